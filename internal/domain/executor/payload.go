package executor

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Payload carries the request parameters of a task. Keys are defined per
// executor type.
type Payload map[string]any

// Decode copies the payload into a typed request struct tagged with
// `mapstructure`. JSON numbers and strings are coerced where possible.
func (p Payload) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(p))
}

// String returns the string value of key, or "" when absent.
func (p Payload) String(key string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome of a task. The "status" key is always either
// StatusSuccess or StatusError; error results carry an "error" message.
type Result map[string]any

// Success builds a success result from fields.
func Success(fields map[string]any) Result {
	r := make(Result, len(fields)+1)
	for k, v := range fields {
		r[k] = v
	}
	r["status"] = StatusSuccess
	return r
}

// Failure builds an error result.
func Failure(msg string) Result {
	return Result{"status": StatusError, "error": msg}
}

func Failuref(format string, args ...any) Result {
	return Failure(fmt.Sprintf(format, args...))
}

func (r Result) Status() string {
	s, _ := r["status"].(string)
	return s
}

func (r Result) OK() bool {
	return r.Status() == StatusSuccess
}

// ErrorMessage returns the error text of a failed result.
func (r Result) ErrorMessage() string {
	s, _ := r["error"].(string)
	return s
}
