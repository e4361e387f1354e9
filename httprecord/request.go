package httprecord

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// RequestSource is the generic request shape. Every attribute is optional.
//
// URL and Path are alternatives: URL wins unless it is nil or empty. Headers
// and RawHeaders are alternatives too: RawHeaders is the slot client-side
// requests use, and is read only when Headers is nil.
type RequestSource struct {
	HTTPVersion *string
	Method      *string
	Timestamp   *time.Time
	URL         *string
	Path        *string
	Headers     Headers
	RawHeaders  Headers
	Socket      *Socket
}

// Socket holds the addresses of the connection a request travelled on.
type Socket struct {
	RemoteAddress *string
	RemotePort    *int
	LocalAddress  *string
	LocalPort     *int
}

// RequestSourcer is implemented by types that can describe themselves as a
// request.
type RequestSourcer interface {
	RequestSource() RequestSource
}

type timestampKey struct{}

// WithTimestamp attaches the time a request was received or sent to ctx. The
// request normalizer reports it as the record timestamp.
func WithTimestamp(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timestampKey{}, t)
}

// TimestampFromContext returns the time attached by WithTimestamp.
func TimestampFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(timestampKey{}).(time.Time)
	return t, ok
}

// NormalizeRequest extracts a RequestRecord from req and filters its headers
// through policy. A nil policy keeps every header.
func NormalizeRequest(req any, policy *Policy) (*RequestRecord, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	src, err := requestSourceOf(req)
	if err != nil {
		return nil, err
	}
	return buildRequestRecord(src, policy), nil
}

func buildRequestRecord(src RequestSource, policy *Policy) *RequestRecord {
	socket := requestSocket(src)
	return &RequestRecord{
		Timestamp:     clonePtr(src.Timestamp),
		HTTPVersion:   clonePtr(src.HTTPVersion),
		Method:        clonePtr(src.Method),
		URL:           clonePtr(requestURL(src)),
		Headers:       filterHeaders(requestHeaders(src), policy),
		RemoteAddress: clonePtr(socket.RemoteAddress),
		RemotePort:    clonePtr(socket.RemotePort),
		LocalAddress:  clonePtr(socket.LocalAddress),
		LocalPort:     clonePtr(socket.LocalPort),
	}
}

// requestSourceOf resolves the concrete request shapes.
func requestSourceOf(req any) (RequestSource, error) {
	switch v := req.(type) {
	case nil:
		return RequestSource{}, fmt.Errorf("%w: request is nil", ErrInvalidArgument)
	case *http.Request:
		if v == nil {
			return RequestSource{}, fmt.Errorf("%w: request is nil", ErrInvalidArgument)
		}
		if v.RequestURI != "" {
			return FromIncomingRequest(v), nil
		}
		return FromOutgoingRequest(v), nil
	case RequestSource:
		return v, nil
	case *RequestSource:
		if v == nil {
			return RequestSource{}, fmt.Errorf("%w: request is nil", ErrInvalidArgument)
		}
		return *v, nil
	case RequestSourcer:
		if isNil(v) {
			return RequestSource{}, fmt.Errorf("%w: request is nil", ErrInvalidArgument)
		}
		return v.RequestSource(), nil
	default:
		return RequestSource{}, fmt.Errorf("%w: unsupported request type %T", ErrInvalidArgument, req)
	}
}

// requestURL prefers URL and falls back to Path.
func requestURL(src RequestSource) *string {
	if src.URL != nil && *src.URL != "" {
		return src.URL
	}
	return src.Path
}

// requestHeaders prefers Headers, then RawHeaders, then an empty map.
func requestHeaders(src RequestSource) Headers {
	if src.Headers != nil {
		return src.Headers
	}
	if src.RawHeaders != nil {
		return src.RawHeaders
	}
	return Headers{}
}

func requestSocket(src RequestSource) Socket {
	if src.Socket == nil {
		return Socket{}
	}
	return *src.Socket
}

// FromIncomingRequest describes a request received by an http.Server.
func FromIncomingRequest(r *http.Request) RequestSource {
	headers := FromHTTPHeader(r.Header)
	if r.Host != "" {
		headers[hostHeader] = r.Host
	}

	src := RequestSource{
		HTTPVersion: ptr(fmt.Sprintf("%d.%d", r.ProtoMajor, r.ProtoMinor)),
		Method:      ptr(r.Method),
		URL:         ptr(r.RequestURI),
		Headers:     headers,
		Socket:      &Socket{},
	}
	if t, ok := TimestampFromContext(r.Context()); ok {
		src.Timestamp = &t
	}

	src.Socket.RemoteAddress, src.Socket.RemotePort = splitHostPort(r.RemoteAddr)
	if local, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok && local != nil {
		src.Socket.LocalAddress, src.Socket.LocalPort = splitHostPort(local.String())
	}
	return src
}

// FromOutgoingRequest describes a request built by an http.Client. Client
// requests carry no protocol version or socket until they are sent, and their
// headers live in the raw slot.
func FromOutgoingRequest(r *http.Request) RequestSource {
	headers := FromHTTPHeader(r.Header)
	switch {
	case r.Host != "":
		headers[hostHeader] = r.Host
	case r.URL != nil && r.URL.Host != "":
		headers[hostHeader] = r.URL.Host
	}

	src := RequestSource{
		Method:     ptr(r.Method),
		RawHeaders: headers,
	}
	if r.URL != nil {
		src.Path = ptr(r.URL.RequestURI())
	}
	if t, ok := TimestampFromContext(r.Context()); ok {
		src.Timestamp = &t
	}
	return src
}

// SocketFromAddrs describes a connection from its endpoint addresses. Either
// address may be nil.
func SocketFromAddrs(remote, local net.Addr) *Socket {
	socket := &Socket{}
	if remote != nil {
		socket.RemoteAddress, socket.RemotePort = splitHostPort(remote.String())
	}
	if local != nil {
		socket.LocalAddress, socket.LocalPort = splitHostPort(local.String())
	}
	return socket
}

// splitHostPort keeps the whole address as host when it has no port.
func splitHostPort(addr string) (*string, *int) {
	if addr == "" {
		return nil, nil
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return ptr(addr), nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return ptr(host), nil
	}
	return ptr(host), ptr(port)
}
