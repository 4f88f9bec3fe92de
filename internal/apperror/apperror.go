package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the HTTP layer can map them to responses
// without inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConversion
	KindMalformedDocument
	KindPageNotFound
	KindRemoteService
	KindNotFound
	KindInvalidToken
	KindForbidden
	KindConflict
)

var kindNames = map[Kind]string{
	KindInternal:          "internal",
	KindValidation:        "validation",
	KindConversion:        "conversion",
	KindMalformedDocument: "malformed_document",
	KindPageNotFound:      "page_not_found",
	KindRemoteService:     "remote_service",
	KindNotFound:          "not_found",
	KindInvalidToken:      "invalid_token",
	KindForbidden:         "forbidden",
	KindConflict:          "conflict",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels usable with errors.Is. Any *Error of the same kind matches.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrConversion        = &Error{Kind: KindConversion}
	ErrMalformedDocument = &Error{Kind: KindMalformedDocument}
	ErrPageNotFound      = &Error{Kind: KindPageNotFound}
	ErrRemoteService     = &Error{Kind: KindRemoteService}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidToken      = &Error{Kind: KindInvalidToken}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrConflict          = &Error{Kind: KindConflict}
)

// Error is a classified failure. Op names the operation that failed, Msg is
// safe to show to clients, and Err is the underlying cause (never shown).
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality so that errors.Is(err, apperror.ErrNotFound) works
// for any not-found error regardless of Op or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message of the first *Error in the chain.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return ""
}

func newErr(k Kind, op, msg string, cause error) *Error {
	return &Error{Kind: k, Op: op, Msg: msg, Err: cause}
}

func Validation(op, msg string) error { return newErr(KindValidation, op, msg, nil) }

func Conversion(op string, cause error) error {
	return newErr(KindConversion, op, "document conversion failed", cause)
}

func MalformedDocument(op string, cause error) error {
	return newErr(KindMalformedDocument, op, "document is not a valid PDF", cause)
}

func PageNotFound(op string, page, pageCount int) error {
	return newErr(KindPageNotFound, op, fmt.Sprintf("page %d not found in %d-page document", page, pageCount), nil)
}

func RemoteService(op string, cause error) error {
	return newErr(KindRemoteService, op, "remote service failure", cause)
}

func NotFound(op, msg string) error { return newErr(KindNotFound, op, msg, nil) }

func InvalidToken(op string, cause error) error {
	return newErr(KindInvalidToken, op, "invalid or expired token", cause)
}

func Forbidden(op, msg string) error { return newErr(KindForbidden, op, msg, nil) }

func Conflict(op, msg string) error { return newErr(KindConflict, op, msg, nil) }
