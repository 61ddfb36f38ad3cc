package errorx

import (
	"errors"
	"fmt"
	"time"
)

type Error struct {
	Code    Code
	Message string

	// RetryAt is only set for TooManyRequests errors. It tells the caller when
	// the rejected action becomes available again.
	RetryAt time.Time
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

// RateLimited returns a TooManyRequests error which can be retried at the
// given time.
func RateLimited(retryAt time.Time, format string, a ...any) Error {
	return Error{
		Code:    TooManyRequests,
		Message: fmt.Sprintf(format, a...),
		RetryAt: retryAt,
	}
}

func (e Error) Error() string {
	return e.Message
}

// Is reports whether err is an Error with the given code.
func Is(err error, code Code) bool {
	var errx Error
	if !errors.As(err, &errx) {
		return false
	}

	return errx.Code == code
}
