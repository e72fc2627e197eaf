package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nocookies/internal/coordinator"
	"nocookies/internal/dom"
)

type ErrorType int

const (
	ErrorTypeTemporary ErrorType = iota
	ErrorTypeCritical
)

func (e ErrorType) String() string {
	switch e {
	case ErrorTypeTemporary:
		return "temporary"
	case ErrorTypeCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// StepError is a failure inside one state of the machine.
type StepError struct {
	Step State
	Kind ErrorType
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepError(step State, err error) *StepError {
	if err == nil {
		return nil
	}
	return &StepError{Step: step, Kind: classifyError(err), Err: err}
}

// classifyError: cancellation and a stopped coordinator end the page's
// life; everything else (stale nodes, flaky evaluation, storage denial)
// is worth another scan.
func classifyError(err error) ErrorType {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, coordinator.ErrClosed):
		return ErrorTypeCritical
	case errors.Is(err, dom.ErrStorageDenied):
		return ErrorTypeTemporary
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "browser has been closed") ||
		strings.Contains(msg, "page closed") {
		return ErrorTypeCritical
	}
	return ErrorTypeTemporary
}

func isCriticalError(err error) bool {
	return err != nil && classifyError(err) == ErrorTypeCritical
}
