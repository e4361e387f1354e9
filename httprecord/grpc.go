package httprecord

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// authorityKey is the pseudo-header gRPC servers expose in incoming metadata.
const authorityKey = ":authority"

// grpcCall describes a gRPC call as an HTTP/2 POST to the full method name,
// so it can go through both normalizers.
type grpcCall struct {
	method     string
	authority  string
	start      time.Time
	elapsed    time.Duration
	requestMD  metadata.MD
	responseMD metadata.MD
	socket     *Socket
	err        error
}

// RequestSource implements RequestSourcer.
func (c *grpcCall) RequestSource() RequestSource {
	headers := FromMetadata(c.requestMD)
	if _, ok := headers[hostHeader]; !ok && c.authority != "" {
		headers[hostHeader] = c.authority
	}

	return RequestSource{
		HTTPVersion: ptr("2"),
		Method:      ptr(http.MethodPost),
		Timestamp:   ptr(c.start),
		URL:         ptr(c.method),
		Headers:     headers,
		Socket:      c.socket,
	}
}

// ResponseSource implements ResponseSourcer. The gRPC status is reported as
// the HTTP status grpc-gateway would answer with.
func (c *grpcCall) ResponseSource() ResponseSource {
	return ResponseSource{
		StatusCode:   ptr(runtime.HTTPStatusFromCode(status.Code(c.err))),
		Headers:      FromMetadata(c.responseMD),
		Timestamp:    ptr(c.start.Add(c.elapsed)),
		ResponseTime: ptr(c.elapsed),
	}
}

func (c *grpcCall) fields() []zap.Field {
	fields := []zap.Field{zap.String("grpc_method", c.method), zap.String("grpc_code", status.Code(c.err).String())}
	if ids := c.requestMD.Get(requestIDHeader); len(ids) > 0 {
		fields = append(fields, zap.String("request_id", ids[0]))
	}
	return fields
}

func newServerCall(ctx context.Context, method string) *grpcCall {
	call := &grpcCall{method: method, start: time.Now()}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		call.requestMD = md
		if authority := md.Get(authorityKey); len(authority) > 0 {
			call.authority = authority[0]
		}
	}
	if p, ok := peer.FromContext(ctx); ok {
		call.socket = SocketFromAddrs(p.Addr, p.LocalAddr)
	}
	return call
}

// UnaryServerInterceptor creates a gRPC unary server interceptor that logs
// every call. Headers the handler sets with grpc.SetHeader or grpc.SendHeader
// appear in the response record.
func (n *Normalizer) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if n.skip(info.FullMethod) {
			return handler(ctx, req)
		}

		call := newServerCall(ctx, info.FullMethod)
		capture := &headerCapture{}
		ctx = capture.wrapContext(WithTimestamp(ctx, call.start))

		resp, err := handler(ctx, req)

		call.elapsed = time.Since(call.start)
		call.responseMD = capture.get()
		call.err = err
		n.logExchange("grpc server call", call, call, call.fields()...)

		return resp, err
	}
}

// StreamServerInterceptor creates a gRPC stream server interceptor that logs
// every stream once it ends.
func (n *Normalizer) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if n.skip(info.FullMethod) {
			return handler(srv, ss)
		}

		call := newServerCall(ss.Context(), info.FullMethod)
		capture := &headerCapture{}

		// Wrap the server stream to capture response headers
		wrappedStream := &wrappedServerStream{
			ServerStream: ss,
			ctx:          capture.wrapContext(WithTimestamp(ss.Context(), call.start)),
			capture:      capture,
		}

		err := handler(srv, wrappedStream)

		call.elapsed = time.Since(call.start)
		call.responseMD = capture.get()
		call.err = err
		n.logExchange("grpc server stream", call, call, call.fields()...)

		return err
	}
}

// UnaryClientInterceptor creates a gRPC unary client interceptor that logs
// the outgoing metadata and the response headers of every call.
func (n *Normalizer) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if n.skip(method) {
			return invoker(ctx, method, req, reply, cc, opts...)
		}

		var (
			header metadata.MD
			p      peer.Peer
		)
		call := &grpcCall{method: method, start: time.Now()}
		if md, ok := metadata.FromOutgoingContext(ctx); ok {
			call.requestMD = md
		}
		if cc != nil {
			call.authority = cc.Target()
		}

		opts = append(opts[:len(opts):len(opts)], grpc.Header(&header), grpc.Peer(&p))
		err := invoker(ctx, method, req, reply, cc, opts...)

		call.elapsed = time.Since(call.start)
		call.responseMD = header
		call.err = err
		if p.Addr != nil || p.LocalAddr != nil {
			call.socket = SocketFromAddrs(p.Addr, p.LocalAddr)
		}
		n.logExchange("grpc client call", call, call, call.fields()...)

		return err
	}
}

// headerCapture collects the response headers a handler sets. Stream handlers
// may set them from several goroutines.
type headerCapture struct {
	mu sync.Mutex
	md metadata.MD
}

func (c *headerCapture) add(md metadata.MD) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.md = metadata.Join(c.md, md)
}

func (c *headerCapture) get() metadata.MD {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.md.Copy()
}

// wrapContext routes grpc.SetHeader and grpc.SendHeader calls made with the
// returned context through the capture.
func (c *headerCapture) wrapContext(ctx context.Context) context.Context {
	stream := grpc.ServerTransportStreamFromContext(ctx)
	if stream == nil {
		return ctx
	}
	return grpc.NewContextWithServerTransportStream(ctx, &capturingTransportStream{
		ServerTransportStream: stream,
		capture:               c,
	})
}

type capturingTransportStream struct {
	grpc.ServerTransportStream
	capture *headerCapture
}

func (s *capturingTransportStream) SetHeader(md metadata.MD) error {
	if err := s.ServerTransportStream.SetHeader(md); err != nil {
		return err
	}
	s.capture.add(md)
	return nil
}

func (s *capturingTransportStream) SendHeader(md metadata.MD) error {
	if err := s.ServerTransportStream.SendHeader(md); err != nil {
		return err
	}
	s.capture.add(md)
	return nil
}

// wrappedServerStream wraps a grpc.ServerStream to provide custom context
// and capture the headers sent on it
type wrappedServerStream struct {
	grpc.ServerStream
	ctx     context.Context
	capture *headerCapture
}

func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}

func (w *wrappedServerStream) SetHeader(md metadata.MD) error {
	if err := w.ServerStream.SetHeader(md); err != nil {
		return err
	}
	w.capture.add(md)
	return nil
}

func (w *wrappedServerStream) SendHeader(md metadata.MD) error {
	if err := w.ServerStream.SendHeader(md); err != nil {
		return err
	}
	w.capture.add(md)
	return nil
}
