package repositories

import (
	"comms-hub/contract"
	"comms-hub/domain"
	errs "comms-hub/errors"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	duePrefix  = "job:due:"
	recPrefix  = "job:rec:"
	commPrefix = "job:comm:"

	// claimLease is the visibility timeout on a claimed job: if no outcome
	// is recorded before it expires the job becomes eligible again, so a
	// worker crash between claim and outcome cannot orphan a delivery.
	claimLease = 5 * time.Minute
)

// JobRepository is the durable dispatch queue backend on top of BadgerDB.
//
// Key layout:
//
//	job:due:{nextEligibleAt:019d}:{jobID}       eligibility index, time-ordered;
//	                                            doubles as the claim lease key
//	                                            while a job is DELIVERING
//	job:rec:{jobID}                             full job record (JSON)
//	job:comm:{communicationID}:{createdAt:019d}:{jobID}  per-communication index
//
// The 19-digit zero padding keeps keys lexicographically ordered by time,
// so a prefix scan over job:due: yields jobs oldest-deadline first and can
// stop at the first key in the future.
type JobRepository struct {
	db  *badger.DB
	log *slog.Logger
}

var _ contract.IJobRepository = (*JobRepository)(nil)

func NewJobRepository(db *badger.DB, log *slog.Logger) *JobRepository {
	return &JobRepository{db: db, log: log}
}

func dueKey(job domain.DeliveryJob) []byte {
	return []byte(fmt.Sprintf("%s%019d:%s", duePrefix, job.NextEligibleAt.UnixNano(), job.ID))
}

func recKey(jobID string) []byte {
	return []byte(recPrefix + jobID)
}

func commKey(job domain.DeliveryJob) []byte {
	return []byte(fmt.Sprintf("%s%s:%019d:%s", commPrefix, job.CommunicationID, job.CreatedAt.UnixNano(), job.ID))
}

// Enqueue persists a new pending job. If any record already exists for the
// job id the call is a no-op and reports accepted=false: this is the
// idempotency boundary that stops request retries from double-enqueuing.
func (r *JobRepository) Enqueue(job domain.DeliveryJob) (bool, error) {
	accepted := false
	err := r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(recKey(job.ID))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		job.Status = domain.JobPending
		data, err := json.Marshal(job)
		if err != nil {
			return err
		}
		if err := txn.Set(recKey(job.ID), data); err != nil {
			return err
		}
		if err := txn.Set(dueKey(job), []byte(job.ID)); err != nil {
			return err
		}
		if err := txn.Set(commKey(job), []byte(job.ID)); err != nil {
			return err
		}
		accepted = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("enqueuing job %s: %w", job.ID, err)
	}
	return accepted, nil
}

// NextDue returns up to limit jobs whose eligibility time has passed,
// oldest first. A DELIVERING job surfacing here means its claim lease
// expired without an outcome; it is eligible to be claimed again. Terminal
// jobs whose due key lingers are filtered out by the record's status.
func (r *JobRepository) NextDue(now time.Time, limit int) ([]domain.DeliveryJob, error) {
	var jobs []domain.DeliveryJob
	prefix := []byte(duePrefix)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.PrefetchSize = limit

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix) && len(jobs) < limit; it.Next() {
			key := string(it.Item().Key())
			nanos, err := strconv.ParseInt(key[len(duePrefix):len(duePrefix)+19], 10, 64)
			if err != nil {
				return fmt.Errorf("malformed due key %q: %w", key, err)
			}
			if nanos > now.UnixNano() {
				break
			}

			var jobID string
			if err := it.Item().Value(func(v []byte) error {
				jobID = string(v)
				return nil
			}); err != nil {
				return err
			}

			job, err := getJob(txn, jobID)
			if errors.Is(err, errs.ErrJobNotFound) {
				r.log.Warn(fmt.Sprintf("Dangling due key %s, record gone", key))
				continue
			}
			if err != nil {
				return err
			}
			if job.Terminal() {
				continue
			}
			jobs = append(jobs, job)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning due jobs: %w", err)
	}
	return jobs, nil
}

// Claim atomically takes ownership of a job by deleting its due key,
// flipping the record to DELIVERING and writing a lease key claimLease in
// the future. Recording an outcome (Requeue or a terminal mark) consumes
// the lease; otherwise the job resurfaces in NextDue once the lease
// expires, so a crashed worker never strands a delivery. Losing the race
// to another worker surfaces as ErrJobNotPending, which callers skip
// silently.
func (r *JobRepository) Claim(job domain.DeliveryJob) (domain.DeliveryJob, error) {
	var claimed domain.DeliveryJob
	err := r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(dueKey(job))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errs.ErrJobNotPending
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(dueKey(job)); err != nil {
			return err
		}

		current, err := getJob(txn, job.ID)
		if err != nil {
			return err
		}
		if current.Terminal() {
			return errs.ErrJobNotPending
		}

		current.Status = domain.JobDelivering
		current.NextEligibleAt = time.Now().UTC().Add(claimLease)
		current.UpdatedAt = time.Now().UTC()
		if err := putJob(txn, current); err != nil {
			return err
		}
		if err := txn.Set(dueKey(current), []byte(current.ID)); err != nil {
			return err
		}
		claimed = current
		return nil
	})
	if err != nil {
		return domain.DeliveryJob{}, err
	}
	return claimed, nil
}

// Requeue schedules another attempt: the claim's lease key is consumed,
// the record goes back to PENDING and a fresh due key is written for the
// backoff deadline.
func (r *JobRepository) Requeue(job domain.DeliveryJob, nextEligibleAt time.Time) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(dueKey(job)); err != nil {
			return err
		}
		job.Status = domain.JobPending
		job.NextEligibleAt = nextEligibleAt
		job.UpdatedAt = time.Now().UTC()
		if err := putJob(txn, job); err != nil {
			return err
		}
		return txn.Set(dueKey(job), []byte(job.ID))
	})
}

func (r *JobRepository) MarkSucceeded(job domain.DeliveryJob) error {
	return r.markTerminal(job, domain.JobSucceeded)
}

func (r *JobRepository) MarkFailedPermanent(job domain.DeliveryJob) error {
	return r.markTerminal(job, domain.JobFailedPermanent)
}

func (r *JobRepository) markTerminal(job domain.DeliveryJob, status domain.JobStatus) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(dueKey(job)); err != nil {
			return err
		}
		job.Status = status
		job.UpdatedAt = time.Now().UTC()
		return putJob(txn, job)
	})
}

func (r *JobRepository) Get(jobID string) (domain.DeliveryJob, error) {
	var job domain.DeliveryJob
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		job, err = getJob(txn, jobID)
		return err
	})
	if err != nil {
		return domain.DeliveryJob{}, err
	}
	return job, nil
}

// LatestForCommunication returns the most recently created job for a
// communication, for the operator status surface. The padded creation time
// in the key makes a reverse prefix scan yield the newest job first.
func (r *JobRepository) LatestForCommunication(communicationID uuid.UUID) (domain.DeliveryJob, error) {
	var jobID string
	prefix := []byte(fmt.Sprintf("%s%s:", commPrefix, communicationID))

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the newest possible key, then the first valid key in
		// reverse order is the latest job.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		it.Seek(seekKey)
		if !it.ValidForPrefix(prefix) {
			return errs.ErrJobNotFound
		}
		return it.Item().Value(func(v []byte) error {
			jobID = string(v)
			return nil
		})
	})
	if err != nil {
		return domain.DeliveryJob{}, err
	}
	return r.Get(jobID)
}

func getJob(txn *badger.Txn, jobID string) (domain.DeliveryJob, error) {
	item, err := txn.Get(recKey(jobID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.DeliveryJob{}, errs.ErrJobNotFound
	}
	if err != nil {
		return domain.DeliveryJob{}, err
	}
	var job domain.DeliveryJob
	if err := item.Value(func(v []byte) error {
		return json.Unmarshal(v, &job)
	}); err != nil {
		return domain.DeliveryJob{}, fmt.Errorf("decoding job %s: %w", jobID, err)
	}
	return job, nil
}

func putJob(txn *badger.Txn, job domain.DeliveryJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return txn.Set(recKey(job.ID), data)
}
