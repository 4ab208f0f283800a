package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrLoopGuard is raised when analyze_input runs past the iteration ceiling.
	ErrLoopGuard = errors.New("iteration ceiling exceeded")
	// ErrMissingQuery is raised when search runs without a query.
	ErrMissingQuery = errors.New("no search query provided")
	// ErrNoFetchTarget is raised when content fetch has nothing to fetch.
	ErrNoFetchTarget = errors.New("no item identified for content fetch")
	// ErrEmptyCompletion is returned when the model produced no text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// WrapTool wraps a notes backend failure for the named tool.
// Deadline overruns surface as 504.
func WrapTool(tool string, err error) error {
	if err == nil {
		return nil
	}
	status := http.StatusBadGateway
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	return New(fmt.Errorf("%s: %w", tool, err), status, ToolErrorMessage)
}

// WrapCompletion wraps a language model failure.
func WrapCompletion(err error) error {
	if err == nil {
		return nil
	}
	status := http.StatusBadGateway
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	return New(err, status, CompletionErrorMessage)
}

// WrapStorage wraps an audit store failure.
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return New(err, http.StatusInternalServerError, StorageErrorMessage)
}
