package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeDataQuality      Code = "DATA_QUALITY_ERROR"
	CodeSchema           Code = "SCHEMA_ERROR"
	CodeInsufficientData Code = "INSUFFICIENT_DATA_ERROR"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// Error carries a code, the pipeline stage that produced it, and optional
// row-level details so a failed batch run can be diagnosed from the error alone.
type Error struct {
	code    Code
	message string
	stage   string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Stage() string {
	if e == nil {
		return ""
	}
	return e.stage
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithStage(stage string) *Error {
	if e == nil {
		return nil
	}
	e.stage = stage
	return e
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.stage != "" {
		return fmt.Sprintf("%s [%s]: %s", e.code, e.stage, e.message)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// StageWrap attaches the stage name to a typed error, or wraps a plain error
// as internal. Used by the pipeline runner so every failure names its stage.
func StageWrap(stage string, err error) error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		if typed.stage == "" {
			typed.stage = stage
		}
		return typed
	}
	return Wrap(CodeInternal, err, err.Error()).WithStage(stage)
}
