package errors

import "fmt"

var (
	ErrWorkerPanic           = fmt.Errorf("worker panic")
	ErrDirectoryUnavailable  = fmt.Errorf("directory unavailable")
	ErrRecipientNotFound     = fmt.Errorf("recipient not found")
	ErrCommunicationNotFound = fmt.Errorf("communication not found")
	ErrJobNotFound           = fmt.Errorf("delivery job not found")
	ErrJobNotPending         = fmt.Errorf("delivery job is not pending")
	ErrSessionClosed         = fmt.Errorf("session closed")
	ErrSendBufferFull        = fmt.Errorf("session send buffer full")
)
