package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrOracleFailure marks a failed or unusable generative-service call.
	ErrOracleFailure = errors.New("oracle failure")
	// ErrParseFailure marks oracle text that survived no repair attempt.
	ErrParseFailure = errors.New("unparseable oracle response")
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
