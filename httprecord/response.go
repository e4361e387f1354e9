package httprecord

import (
	"fmt"
	"net/http"
	"time"
)

// ResponseSource is the generic response shape. Every attribute is optional.
//
// Raw holds unparsed wire data and is only consulted, through a
// RawHeaderParser, when Headers is nil.
type ResponseSource struct {
	StatusCode   *int
	Headers      Headers
	Raw          []byte
	Timestamp    *time.Time
	ResponseTime *time.Duration
}

// ResponseSourcer is implemented by types that can describe themselves as a
// response.
type ResponseSourcer interface {
	ResponseSource() ResponseSource
}

// NormalizeResponse extracts a ResponseRecord from res and filters its headers
// through policy. Raw headers are parsed with DefaultRawHeaderParser.
func NormalizeResponse(res any, policy *Policy) (*ResponseRecord, error) {
	return normalizeResponse(res, policy, DefaultRawHeaderParser)
}

func normalizeResponse(res any, policy *Policy, parser RawHeaderParser) (*ResponseRecord, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	src, err := responseSourceOf(res)
	if err != nil {
		return nil, err
	}

	headers, err := responseHeaders(&src, parser)
	if err != nil {
		return nil, err
	}

	return &ResponseRecord{
		Timestamp:    clonePtr(src.Timestamp),
		StatusCode:   clonePtr(src.StatusCode),
		Headers:      filterHeaders(headers, policy),
		ResponseTime: clonePtr(src.ResponseTime),
	}, nil
}

// responseSourceOf resolves the concrete response shapes.
func responseSourceOf(res any) (ResponseSource, error) {
	switch v := res.(type) {
	case nil:
		return ResponseSource{}, fmt.Errorf("%w: response is nil", ErrInvalidArgument)
	case *http.Response:
		if v == nil {
			return ResponseSource{}, fmt.Errorf("%w: response is nil", ErrInvalidArgument)
		}
		return FromHTTPResponse(v), nil
	case *ResponseRecorder:
		if v == nil {
			return ResponseSource{}, fmt.Errorf("%w: response is nil", ErrInvalidArgument)
		}
		return v.ResponseSource(), nil
	case ResponseSource:
		return v, nil
	case *ResponseSource:
		if v == nil {
			return ResponseSource{}, fmt.Errorf("%w: response is nil", ErrInvalidArgument)
		}
		return *v, nil
	case ResponseSourcer:
		if isNil(v) {
			return ResponseSource{}, fmt.Errorf("%w: response is nil", ErrInvalidArgument)
		}
		return v.ResponseSource(), nil
	default:
		return ResponseSource{}, fmt.Errorf("%w: unsupported response type %T", ErrInvalidArgument, res)
	}
}

// responseHeaders prefers Headers, then whatever the parser derives, then an
// empty map.
func responseHeaders(src *ResponseSource, parser RawHeaderParser) (Headers, error) {
	if src.Headers != nil {
		return src.Headers, nil
	}
	if parser != nil {
		headers, err := parser.ParseRawHeaders(src)
		if err != nil {
			return nil, err
		}
		if headers != nil {
			return headers, nil
		}
	}
	return Headers{}, nil
}

// FromHTTPResponse describes a response received by an http.Client.
func FromHTTPResponse(resp *http.Response) ResponseSource {
	return ResponseSource{
		StatusCode: ptr(resp.StatusCode),
		Headers:    FromHTTPHeader(resp.Header),
	}
}
