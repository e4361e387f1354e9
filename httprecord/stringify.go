package httprecord

import (
	"fmt"
	"net/http"
	"strconv"
)

// StringifyRequest summarizes a request as "<method> <host><url>", reading the
// host from the "host" header. Absent values render as empty strings. Headers
// are not filtered.
//
// req may be a *RequestRecord or any value NormalizeRequest accepts.
func StringifyRequest(req any) (string, error) {
	switch v := req.(type) {
	case *RequestRecord:
		if v == nil {
			return "", fmt.Errorf("%w: request is nil", ErrInvalidArgument)
		}
		return v.String(), nil
	case RequestRecord:
		return v.String(), nil
	}

	src, err := requestSourceOf(req)
	if err != nil {
		return "", err
	}
	return formatRequest(src.Method, requestURL(src), requestHeaders(src)), nil
}

// StringifyResponse summarizes a response as "<status> (<reason>)", with the
// reason phrase from http.StatusText. An unknown status renders an empty
// reason, e.g. "999 ()". An absent status renders as " ()".
//
// res may be a *ResponseRecord or any value NormalizeResponse accepts.
func StringifyResponse(res any) (string, error) {
	switch v := res.(type) {
	case *ResponseRecord:
		if v == nil {
			return "", fmt.Errorf("%w: response is nil", ErrInvalidArgument)
		}
		return v.String(), nil
	case ResponseRecord:
		return v.String(), nil
	}

	src, err := responseSourceOf(res)
	if err != nil {
		return "", err
	}
	return formatResponse(src.StatusCode), nil
}

func formatRequest(method, url *string, headers Headers) string {
	return deref(method) + " " + headers[hostHeader] + deref(url)
}

func formatResponse(statusCode *int) string {
	if statusCode == nil {
		return " ()"
	}
	return strconv.Itoa(*statusCode) + " (" + http.StatusText(*statusCode) + ")"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
