package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAddress       = errors.New("address is required")
	ErrUpstreamStatus     = errors.New("unexpected upstream status")
	ErrMalformedResponse  = errors.New("malformed upstream response")
	ErrReportNotFound     = errors.New("report not found")
	ErrToolNotFound       = errors.New("tool not found")
	ErrToolAlreadyExists  = errors.New("tool already registered")
	ErrUnsupportedLLM     = errors.New("unsupported llm provider")
	ErrOrchestratorFailed = errors.New("agent run failed")
)

// StatusError is returned when an upstream API answers with a non-2xx status.
type StatusError struct {
	Upstream string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Upstream, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUpstreamStatus
}
