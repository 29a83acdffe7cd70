package handler

import "fmt"

// ResultStatus is the outcome class of a dispatched action.
type ResultStatus uint8

const (
	StatusOK ResultStatus = iota
	// StatusNoOp means the action was valid but changed nothing, such as
	// stepping past the newest history entry.
	StatusNoOp
	StatusError
	// StatusCancelled means the action stopped a session or was stopped by
	// its context.
	StatusCancelled
)

var statusNames = [...]string{
	StatusOK:        "ok",
	StatusNoOp:      "no-op",
	StatusError:     "error",
	StatusCancelled: "cancelled",
}

func (s ResultStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// Result is what a handler reports back. Data carries handler state for
// scripts and plugins; find handlers put the match count and index there.
type Result struct {
	Status  ResultStatus
	Error   error
	Message string
	Data    map[string]any
}

func Success() Result { return Result{Status: StatusOK} }

func SuccessWithMessage(msg string) Result { return Result{Status: StatusOK, Message: msg} }

func NoOp() Result { return Result{Status: StatusNoOp} }

func NoOpWithMessage(msg string) Result { return Result{Status: StatusNoOp, Message: msg} }

func Error(err error) Result { return Result{Status: StatusError, Error: err} }

func Errorf(format string, args ...any) Result { return Error(fmt.Errorf(format, args...)) }

func CancelledWithMessage(msg string) Result { return Result{Status: StatusCancelled, Message: msg} }

func (r Result) IsOK() bool { return r.Status == StatusOK }

func (r Result) IsError() bool { return r.Status == StatusError }

// WithData returns a copy of r with key set. r's map is not modified.
func (r Result) WithData(key string, value any) Result {
	data := make(map[string]any, len(r.Data)+1)
	for k, v := range r.Data {
		data[k] = v
	}
	data[key] = value
	r.Data = data
	return r
}

// GetData returns the raw value stored under key.
func (r Result) GetData(key string) (any, bool) {
	v, ok := r.Data[key]
	return v, ok
}

// DataAs returns the value under key when it has type T.
func DataAs[T any](r Result, key string) (T, bool) {
	v, ok := r.Data[key].(T)
	return v, ok
}

func (r Result) GetDataString(key string) string {
	s, _ := DataAs[string](r, key)
	return s
}

func (r Result) GetDataBool(key string) bool {
	b, _ := DataAs[bool](r, key)
	return b
}

// GetDataInt also accepts int64 and float64, the forms numbers take after
// crossing the Lua and YAML boundaries.
func (r Result) GetDataInt(key string) int {
	switch n := r.Data[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
