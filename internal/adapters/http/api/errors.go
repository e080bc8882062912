package api

import (
	"errors"
	"net/http"

	"github.com/mergington/activities/internal/adapters/repository"
	service "github.com/mergington/activities/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Error tags an error with the handler operation that produced it.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Wrap tags err with op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// WrapKind tags err with op and an API error kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// NewKind creates an error of the given kind for op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// problem is what a client sees for an error.
type problem struct {
	status int
	code   string
	detail string
}

var domainProblems = []struct {
	kind error
	problem
}{
	{repository.ErrActivityNotFound, problem{http.StatusNotFound, "not_found", "Activity not found"}},
	{repository.ErrAlreadySignedUp, problem{http.StatusBadRequest, "already_signed_up", "Student already signed up for this activity"}},
	{repository.ErrNotRegistered, problem{http.StatusBadRequest, "not_registered", "Student is not registered for this activity"}},
	{repository.ErrActivityFull, problem{http.StatusBadRequest, "activity_full", "Activity is full"}},
	{service.ErrEmailRequired, problem{http.StatusBadRequest, "bad_request", "email is required"}},
	{service.ErrNameRequired, problem{http.StatusBadRequest, "bad_request", "activity name is required"}},
}

// problemFor maps err to the status, code and detail sent to the client.
// Anything unrecognised is an internal error and its text is not exposed.
func problemFor(err error) problem {
	for _, p := range domainProblems {
		if errors.Is(err, p.kind) {
			return p.problem
		}
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Kind
		if apiErr.Err != nil {
			detail = apiErr.Err
		}
		switch {
		case errors.Is(apiErr.Kind, ErrLimitExceeded):
			return problem{http.StatusBadRequest, "limit_exceeded", detail.Error()}
		case errors.Is(apiErr.Kind, ErrBadRequest):
			return problem{http.StatusBadRequest, "bad_request", detail.Error()}
		}
	}

	return problem{http.StatusInternalServerError, "internal_error", "Internal server error"}
}
