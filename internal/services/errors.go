package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks a malformed domain value rejected at a boundary.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks a run-level setup failure (missing credentials,
	// no usable search strategy). Fatal to the run, surfaced at startup.
	ErrConfiguration = errors.New("configuration error")
	// ErrLookup marks a single external call that failed or returned unusable
	// data. Recovered locally: the pipeline degrades to "no result".
	ErrLookup = errors.New("lookup failure")
	// ErrNotFound marks a lookup that completed but matched nothing.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for classification via errors.Is. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrLookup
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the run rather than degrade
// a single entry's outcome.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
