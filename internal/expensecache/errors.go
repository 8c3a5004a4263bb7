package expensecache

import "fmt"

// Kind identifies which operation failed.
type Kind int

const (
	FetchFailed Kind = iota + 1
	CreateFailed
	UpdateFailed
	DeleteFailed
)

func (k Kind) String() string {
	switch k {
	case FetchFailed:
		return "FetchFailed"
	case CreateFailed:
		return "CreateFailed"
	case UpdateFailed:
		return "UpdateFailed"
	case DeleteFailed:
		return "DeleteFailed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// message is the user-facing text recorded for each kind.
func (k Kind) message() string {
	switch k {
	case FetchFailed:
		return "Failed to fetch expenses"
	case CreateFailed:
		return "Failed to add expense"
	case UpdateFailed:
		return "Failed to update expense"
	case DeleteFailed:
		return "Failed to delete expense"
	default:
		return "Expense operation failed"
	}
}

// Error is a failed cache operation. Transport failures, missing records and
// server-side validation rejections all collapse into one of the four kinds.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: kind.message(), Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: CreateFailed}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
