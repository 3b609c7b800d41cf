package services

import (
	"errors"
	"fmt"
)

// Request errors
var (
	ErrValidation = errors.New("request: validation failed")
)

// Target errors
var (
	ErrTargetInvalid = errors.New("target: neither a domain nor an ip")
	ErrIPInBlackIPs  = errors.New("target: ip is in black ips")
	ErrDomainInvalid = errors.New("target: invalid domain")
)

// Task errors
var (
	ErrTaskNotFound       = errors.New("task: not found")
	ErrTaskIsRunning      = errors.New("task: status does not allow this operation")
	ErrJobHandleNotFound  = errors.New("task: no job handle recorded")
	ErrTaskTypeNotDomain  = errors.New("task: type is not domain")
	ErrTaskTargetNotScope = errors.New("task: target is not in scope")
	ErrTaskSyncDealing    = errors.New("task: sync already in progress")
)

// Scope errors
var (
	ErrScopeNotFound = errors.New("scope: not found")
)

// Queue errors
var (
	ErrDispatchFailed = errors.New("queue: dispatch failed")
)

type errorCode struct {
	code int
	name string
}

var errorCodes = map[error]errorCode{
	ErrValidation:         {1000, "ValidationError"},
	ErrTargetInvalid:      {1101, "TargetInvalid"},
	ErrIPInBlackIPs:       {1102, "IPInBlackIps"},
	ErrDomainInvalid:      {1103, "DomainInvalid"},
	ErrTaskNotFound:       {1201, "NotFoundTask"},
	ErrScopeNotFound:      {1202, "NotFoundScopeID"},
	ErrTaskIsRunning:      {1301, "TaskIsRunning"},
	ErrJobHandleNotFound:  {1302, "CeleryIdNotFound"},
	ErrTaskTypeNotDomain:  {1303, "TaskTypeIsNotDomain"},
	ErrTaskTargetNotScope: {1304, "TaskTargetNotInScope"},
	ErrTaskSyncDealing:    {1305, "TaskSyncDealing"},
	ErrDispatchFailed:     {1401, "DispatchFailed"},
}

// Error is a rejected request: a stable code and name, a message and the
// offending context. It unwraps to its sentinel kind and to the cause.
type Error struct {
	Kind    error
	Code    int
	Name    string
	Message string
	Data    map[string]interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func newError(kind error, data map[string]interface{}) *Error {
	c := errorCodes[kind]
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Error{Kind: kind, Code: c.code, Name: c.name, Message: kind.Error(), Data: data}
}

func wrapError(kind error, data map[string]interface{}, cause error) *Error {
	e := newError(kind, data)
	e.Cause = cause
	return e
}

// AsError extracts the structured rejection from err, if there is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// InvalidRequest reports a request the transport could not decode.
func InvalidRequest(data map[string]interface{}, cause error) *Error {
	return wrapError(ErrValidation, data, cause)
}
