package httprecord

import (
	"fmt"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// LogTransport is an http.RoundTripper that logs the outgoing request and the
// incoming response of every round trip through a Normalizer.
type LogTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// normalizer shapes and writes the records.
	normalizer *Normalizer
}

// Transport wraps next in a LogTransport. A nil next means
// http.DefaultTransport.
func (n *Normalizer) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}

	return &LogTransport{
		next:       next,
		normalizer: n,
	}
}

// RoundTrip implements http.RoundTripper. The request passed to next is a
// shallow copy carrying a client trace; req itself is not modified.
func (t *LogTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", ErrInvalidArgument)
	}

	if req.URL != nil && t.normalizer.skip(req.URL.Path) {
		return t.next.RoundTrip(req)
	}

	var socket atomic.Pointer[Socket]
	trace := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Conn != nil {
				socket.Store(SocketFromAddrs(info.Conn.RemoteAddr(), info.Conn.LocalAddr()))
			}
		},
	}

	start := time.Now()
	ctx := httptrace.WithClientTrace(WithTimestamp(req.Context(), start), trace)

	resp, err := t.next.RoundTrip(req.WithContext(ctx))
	elapsed := time.Since(start)

	reqSrc := FromOutgoingRequest(req)
	reqSrc.Timestamp = &start
	reqSrc.Socket = socket.Load()

	if err != nil {
		fields := []zap.Field{zap.Duration("elapsed", elapsed), zap.Error(err)}
		if rec, nerr := t.normalizer.NormalizeRequest(reqSrc); nerr == nil {
			fields = append(fields, zap.String("summary", rec.String()), zap.Object("request", rec))
		}
		t.normalizer.logger.Warn("http client request failed", fields...)
		return nil, err
	}

	resSrc := FromHTTPResponse(resp)
	resSrc.Timestamp = ptr(start.Add(elapsed))
	resSrc.ResponseTime = &elapsed

	t.normalizer.logExchange("http client exchange", reqSrc, resSrc)

	return resp, nil
}
