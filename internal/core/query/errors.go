package query

import (
	"errors"
	"fmt"
)

var ErrInvalidParam = errors.New("query: invalid parameter")

// ParamError names the parameter that failed validation.
type ParamError struct {
	Param  string
	Value  interface{}
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("query: invalid parameter %q: %s", e.Param, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParam }

func invalid(param string, value interface{}, format string, args ...interface{}) error {
	return &ParamError{Param: param, Value: value, Reason: fmt.Sprintf(format, args...)}
}
