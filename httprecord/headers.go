package httprecord

import (
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc/metadata"
)

// hostHeader is the header the request summary reads the authority from.
const hostHeader = "host"

// Headers maps a header name to its value. Names are case-sensitive.
type Headers map[string]string

// FromHTTPHeader converts an http.Header into Headers. Names are lowercased and
// repeated values are joined with ", ".
func FromHTTPHeader(h http.Header) Headers {
	out := make(Headers, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		out[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return out
}

// FromMetadata converts gRPC metadata into Headers. Metadata keys are already
// lowercase.
func FromMetadata(md metadata.MD) Headers {
	out := make(Headers, len(md))
	for key, values := range md {
		if len(values) == 0 {
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}

// Clone returns a copy of h. The copy of a nil map is an empty map.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Names returns the header names in sorted order.
func (h Headers) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (h Headers) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	for _, name := range h.Names() {
		enc.AddString(name, h[name])
	}
	return nil
}
