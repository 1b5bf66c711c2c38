package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrUnknownCommand    = fmt.Errorf("command not handled by target")
	ErrMissingTarget     = fmt.Errorf("command has no resolvable target")
	ErrUnknownEventType  = fmt.Errorf("unknown event type")
	ErrInvalidPayload    = fmt.Errorf("invalid event payload")
	ErrVersionConflict   = fmt.Errorf("stream version conflict")
	ErrUnknownProcess    = fmt.Errorf("unknown process kind")
	ErrInvalidRequest    = fmt.Errorf("invalid request")
	ErrEngineNotStarted  = fmt.Errorf("engine is not started")
	ErrEngineStopped     = fmt.Errorf("engine was stopped and cannot start again")
	ErrSettleTimeout     = fmt.Errorf("engine did not settle in time")
	ErrRowNotFound       = fmt.Errorf("view row not found")
	ErrSubscriberMissing = fmt.Errorf("subscriber not registered")
)
