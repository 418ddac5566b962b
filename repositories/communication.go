package repositories

import (
	"comms-hub/contract"
	"comms-hub/domain"
	errs "comms-hub/errors"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// CommunicationStore is a BadgerDB-backed implementation of contract.Store.
// In a full deployment the host backend owns the communication records;
// this store carries them for the single-binary setup and for the room
// message log the transport persists before broadcasting.
type CommunicationStore struct {
	db  *badger.DB
	log *slog.Logger
}

var _ contract.Store = (*CommunicationStore)(nil)

func NewCommunicationStore(db *badger.DB, log *slog.Logger) *CommunicationStore {
	return &CommunicationStore{db: db, log: log}
}

func communicationKey(id uuid.UUID) []byte {
	return []byte("comm:" + id.String())
}

func (s *CommunicationStore) SaveCommunication(_ context.Context, comm domain.Communication) error {
	data, err := json.Marshal(comm)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(communicationKey(comm.ID), data)
	})
}

func (s *CommunicationStore) Communication(_ context.Context, id uuid.UUID) (domain.Communication, error) {
	var comm domain.Communication
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(communicationKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errs.ErrCommunicationNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &comm)
		})
	})
	if err != nil {
		return domain.Communication{}, err
	}
	return comm, nil
}

type roomMessage struct {
	Room     domain.RoomID `json:"room"`
	SenderID string        `json:"sender_id"`
	Content  string        `json:"content"`
	At       time.Time     `json:"at"`
}

// SaveRoomMessage appends a chat message to the room's log. The key is
// "msg:{room}:{timestamp_padded}:{uuid}" so messages sort chronologically
// and two messages in the same nanosecond cannot collide.
func (s *CommunicationStore) SaveRoomMessage(_ context.Context, room domain.RoomID, senderID, content string, at time.Time) error {
	key := fmt.Sprintf("msg:%s:%019d:%s", room, at.UnixNano(), uuid.NewString())
	data, err := json.Marshal(roomMessage{Room: room, SenderID: senderID, Content: content, At: at})
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}
