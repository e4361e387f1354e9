package httprecord

import (
	"reflect"
	"time"

	"go.uber.org/zap/zapcore"
)

// RequestRecord is the canonical form of a request. Nil fields were not
// carried by the source.
type RequestRecord struct {
	Timestamp     *time.Time `json:"timestamp,omitempty"`
	HTTPVersion   *string    `json:"httpVersion,omitempty"`
	Method        *string    `json:"method,omitempty"`
	URL           *string    `json:"url,omitempty"`
	Headers       Headers    `json:"headers"`
	RemoteAddress *string    `json:"remoteAddress,omitempty"`
	RemotePort    *int       `json:"remotePort,omitempty"`
	LocalAddress  *string    `json:"localAddress,omitempty"`
	LocalPort     *int       `json:"localPort,omitempty"`
}

// ResponseRecord is the canonical form of a response. Nil fields were not
// carried by the source.
type ResponseRecord struct {
	Timestamp    *time.Time     `json:"timestamp,omitempty"`
	StatusCode   *int           `json:"statusCode,omitempty"`
	Headers      Headers        `json:"headers"`
	ResponseTime *time.Duration `json:"responseTime,omitempty"`
}

// String returns the one-line summary produced by StringifyRequest.
func (r *RequestRecord) String() string {
	if r == nil {
		return ""
	}
	return formatRequest(r.Method, r.URL, r.Headers)
}

// String returns the one-line summary produced by StringifyResponse.
func (r *ResponseRecord) String() string {
	if r == nil {
		return ""
	}
	return formatResponse(r.StatusCode)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r *RequestRecord) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if r.Timestamp != nil {
		enc.AddTime("timestamp", *r.Timestamp)
	}
	addString(enc, "httpVersion", r.HTTPVersion)
	addString(enc, "method", r.Method)
	addString(enc, "url", r.URL)
	if err := enc.AddObject("headers", r.Headers); err != nil {
		return err
	}
	addString(enc, "remoteAddress", r.RemoteAddress)
	addInt(enc, "remotePort", r.RemotePort)
	addString(enc, "localAddress", r.LocalAddress)
	addInt(enc, "localPort", r.LocalPort)
	return nil
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r *ResponseRecord) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if r.Timestamp != nil {
		enc.AddTime("timestamp", *r.Timestamp)
	}
	addInt(enc, "statusCode", r.StatusCode)
	if err := enc.AddObject("headers", r.Headers); err != nil {
		return err
	}
	if r.ResponseTime != nil {
		enc.AddDuration("responseTime", *r.ResponseTime)
	}
	return nil
}

func addString(enc zapcore.ObjectEncoder, key string, v *string) {
	if v != nil {
		enc.AddString(key, *v)
	}
}

func addInt(enc zapcore.ObjectEncoder, key string, v *int) {
	if v != nil {
		enc.AddInt(key, *v)
	}
}

func ptr[T any](v T) *T {
	return &v
}

// clonePtr returns a copy of the value behind p, or nil.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// isNil reports whether v holds a nil reference.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
