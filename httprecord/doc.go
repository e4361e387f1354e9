// Package httprecord normalizes HTTP requests and responses into canonical
// records for structured logging.
//
// A request or response can come from either side of a connection: a server
// sees an incoming request and writes an outgoing response, a client sends an
// outgoing request and reads an incoming response. Each shape carries a
// different subset of attributes. This package reconciles them into a single
// RequestRecord or ResponseRecord and filters the headers through an
// allow/deny Policy on the way.
//
// # Basic Usage
//
//	rec, err := httprecord.NormalizeRequest(r, &httprecord.Policy{
//		DenyHeaders: []string{"authorization", "cookie"},
//	})
//	if err != nil {
//		return err
//	}
//	logger.Info("request", zap.Object("request", rec))
//
// # Sources
//
// The normalizers accept any of the following values:
//
//   - *http.Request, either received by a server or built by a client
//   - *http.Response, as returned by an http.RoundTripper
//   - *ResponseRecorder, the writer wrapper installed by Middleware
//   - RequestSource / ResponseSource, for anything else
//   - any type implementing RequestSourcer or ResponseSourcer
//
// Every attribute is optional. Missing attributes show up as nil pointers in
// the record, never as errors. Only a nil or unsupported source fails, with
// ErrInvalidArgument.
//
// # Header Policy
//
// If AllowHeaders is set, only those headers survive. DenyHeaders are then
// removed regardless, so a header listed in both is dropped. Header names are
// matched case-sensitively. Headers taken from net/http or gRPC metadata are
// lowercase.
//
// # Integration
//
// A Normalizer binds a Config to the HTTP and gRPC plumbing:
//
//	n := httprecord.NewBuilder().
//		DenyHeaders("authorization", "cookie").
//		SkipPaths("/health").
//		Build()
//	n.SetLogger(logger)
//
//	handler := n.Middleware(mux)
//	client := &http.Client{Transport: n.Transport(http.DefaultTransport)}
//	server := grpc.NewServer(grpc.UnaryInterceptor(n.UnaryServerInterceptor()))
package httprecord
