package models

import (
	"errors"
	"fmt"
	"strings"
)

// 错误类别, 由 handlers 映射为 HTTP 状态码
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
)

var (
	ErrDuplicateUsername  = newKindError(ErrConflict, "username already exists")
	ErrDuplicateEmail     = newKindError(ErrConflict, "email already exists")
	ErrAlreadyFollowing   = newKindError(ErrConflict, "already following")
	ErrNotFollowing       = newKindError(ErrConflict, "not following")
	ErrSelfFollow         = newKindError(ErrValidation, "cannot follow yourself")
	ErrInvalidCredentials = newKindError(ErrUnauthenticated, "invalid username or password")
	ErrUserNotFound       = newKindError(ErrNotFound, "user not found")
	ErrTweetNotFound      = newKindError(ErrNotFound, "tweet not found")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 可以携带多个字段错误
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Fields 按字段聚合错误信息
func (e *ValidationError) Fields() map[string][]string {
	out := make(map[string][]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// OrNil 没有字段错误时返回 nil
func (e *ValidationError) OrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}
