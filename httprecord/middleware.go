package httprecord

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// requestIDHeader correlates the entries logged for one request.
const requestIDHeader = "X-Request-ID"

// Middleware logs one entry per request served by next, holding the incoming
// request and outgoing response records. Paths in SkipPaths are not logged.
func (n *Normalizer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n.skip(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		r = r.WithContext(WithTimestamp(r.Context(), start))

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		recorder := NewResponseRecorder(w, start)
		next.ServeHTTP(recorder, r)

		n.logExchange("http server exchange", r, recorder, zap.String("request_id", requestID))
	})
}

// ResponseRecorder wraps an http.ResponseWriter to capture what a handler
// sends. It describes the outgoing response to the normalizers.
type ResponseRecorder struct {
	http.ResponseWriter
	start       time.Time
	status      int
	wroteHeader bool
	bytes       int64
}

// NewResponseRecorder wraps w. start is the time the request was received.
func NewResponseRecorder(w http.ResponseWriter, start time.Time) *ResponseRecorder {
	return &ResponseRecorder{
		ResponseWriter: w,
		start:          start,
		status:         http.StatusOK,
	}
}

// WriteHeader records the first final status code.
func (r *ResponseRecorder) WriteHeader(code int) {
	if !r.wroteHeader && code >= http.StatusOK {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *ResponseRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

// Flush delegates to the underlying ResponseWriter if it supports http.Flusher.
func (r *ResponseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *ResponseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Status returns the recorded status code. It is 200 until the handler
// writes another one.
func (r *ResponseRecorder) Status() int {
	return r.status
}

// BytesWritten returns the number of body bytes written so far.
func (r *ResponseRecorder) BytesWritten() int64 {
	return r.bytes
}

// ResponseSource implements ResponseSourcer. The response time is measured
// up to the call.
func (r *ResponseRecorder) ResponseSource() ResponseSource {
	return ResponseSource{
		StatusCode:   ptr(r.status),
		Headers:      FromHTTPHeader(r.Header()),
		Timestamp:    ptr(r.start),
		ResponseTime: ptr(time.Since(r.start)),
	}
}
