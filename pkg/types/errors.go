package types

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can tell recoverable input problems
// from store or provider failures without inspecting message text.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindPersistence
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPersistence:
		return "persistence"
	case KindExternalService:
		return "external_service"
	default:
		return "unknown"
	}
}

// Domain errors for input validation
var (
	ErrMissingName      = errors.New("name is required")
	ErrInvalidPrice     = errors.New("unit price must be greater than zero")
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
	ErrEmptyOrder       = errors.New("order must have at least one line item")
	ErrIndexOutOfRange  = errors.New("line item index out of range")
	ErrAlreadyCommitted = errors.New("order already committed, reload it to edit again")
	ErrInvalidID        = errors.New("invalid id")
)

// Error carries a Kind alongside the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation wraps err as a validation failure.
func Validation(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// Validationf builds a validation failure around a sentinel with extra detail.
func Validationf(op string, err error, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// NotFoundf reports a missing customer, product or order.
func NotFoundf(op string, err error, format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Persistence wraps a store failure. The write it belongs to has already been rolled back.
func Persistence(op string, err error) error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// External wraps a summarization provider failure.
func External(op string, err error) error {
	return &Error{Kind: KindExternalService, Op: op, Err: err}
}

// KindOf returns the Kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
