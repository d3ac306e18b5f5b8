package errors

import (
	"errors"
	"fmt"
)

// Categories. Every sentinel below wraps exactly one of them so transports
// can map an error to a status without knowing each sentinel.
var (
	ErrValidation      = fmt.Errorf("validation failed")
	ErrAuthentication  = fmt.Errorf("authentication failed")
	ErrNotFound        = fmt.Errorf("not found")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
	ErrConflict        = fmt.Errorf("conflict")
)

var (
	ErrUserAlreadyExists  = fmt.Errorf("%w: user already exists", ErrValidation)
	ErrInvalidInput       = fmt.Errorf("%w: invalid input", ErrValidation)
	ErrInvalidPassword    = fmt.Errorf("%w: password does not meet complexity requirements", ErrValidation)
	ErrInvalidPayload     = fmt.Errorf("%w: invalid payload", ErrValidation)
	ErrContentTooLong     = fmt.Errorf("%w: content exceeds maximum length", ErrValidation)
	ErrTimestampRange     = fmt.Errorf("%w: timestamp out of range", ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrUserNotFound       = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrMessageNotFound    = fmt.Errorf("%w: message not found", ErrNotFound)
	ErrTokenMalformed     = fmt.Errorf("%w: token malformed", ErrUnauthenticated)
	ErrTokenExpired       = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrAlreadyBound       = fmt.Errorf("%w: connection already bound", ErrConflict)
	ErrNotBound           = fmt.Errorf("%w: connection not bound", ErrConflict)
	ErrSenderMismatch     = fmt.Errorf("%w: sender does not match bound username", ErrConflict)
)

var (
	ErrTokenGeneration = fmt.Errorf("failed to generate token")
	ErrDeliveryFailed  = fmt.Errorf("delivery failed")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
	ErrRateLimited     = fmt.Errorf("rate limit exceeded")
)

// Is and As are re-exported so callers importing this package under the name
// errors keep access to the standard helpers.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func Join(errs ...error) error { return errors.Join(errs...) }
