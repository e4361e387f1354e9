package httprecord

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

//go:generate mockgen -source=parser.go -destination=mocks/raw_header_parser_mock.go

// RawHeaderParser derives headers from a response that has no parsed Headers,
// typically from its unparsed wire data. It returns nil when no headers can be
// derived. Errors are passed to the caller unchanged.
type RawHeaderParser interface {
	ParseRawHeaders(src *ResponseSource) (Headers, error)
}

// DefaultRawHeaderParser is used by NormalizeResponse and by a Normalizer
// built without WithRawHeaderParser.
var DefaultRawHeaderParser RawHeaderParser = WireHeaderParser{}

// WireHeaderParser reads the header block at the start of ResponseSource.Raw.
// A leading status line is skipped, parsing stops at the first blank line and
// header names keep the case they had on the wire.
type WireHeaderParser struct{}

// ParseRawHeaders implements RawHeaderParser.
func (WireHeaderParser) ParseRawHeaders(src *ResponseSource) (Headers, error) {
	if src == nil || len(src.Raw) == 0 {
		return nil, nil
	}

	headers := Headers{}
	scanner := bufio.NewScanner(bytes.NewReader(src.Raw))
	first := true
	last := ""
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			first = false
			if strings.HasPrefix(line, "HTTP/") {
				continue
			}
		}
		if line == "" {
			break
		}

		// obsolete line folding
		if line[0] == ' ' || line[0] == '\t' {
			if last == "" {
				return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
			}
			headers[last] += " " + strings.TrimSpace(line)
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		value = strings.TrimSpace(value)
		if prev, exists := headers[name]; exists {
			value = prev + ", " + value
		}
		headers[name] = value
		last = name
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading raw headers: %w", err)
	}
	return headers, nil
}
