package httprecord

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"go.uber.org/zap"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/proto"
)

// MetadataAnnotator creates a metadata annotator for grpc-gateway. It logs the
// incoming HTTP request and forwards a request id to the backend, reusing the
// X-Request-ID header when the client sent one.
func (n *Normalizer) MetadataAnnotator() func(context.Context, *http.Request) metadata.MD {
	return func(ctx context.Context, req *http.Request) metadata.MD {
		requestID := req.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		if !n.skip(req.URL.Path) {
			rec, err := n.NormalizeRequest(req)
			if err != nil {
				n.logger.Warn("failed to normalize request", zap.String("request_id", requestID), zap.Error(err))
			} else {
				n.logger.Info("grpc gateway request",
					zap.String("request_id", requestID),
					zap.String("summary", rec.String()),
					zap.Object("request", rec))
			}
		}

		return metadata.Pairs(strings.ToLower(requestIDHeader), requestID)
	}
}

// ResponseModifier creates a forward response option for grpc-gateway. It
// logs the response record built from the header metadata the backend sent.
// The option only runs for successful calls.
func (n *Normalizer) ResponseModifier() func(context.Context, http.ResponseWriter, proto.Message) error {
	return func(ctx context.Context, w http.ResponseWriter, msg proto.Message) error {
		src := ResponseSource{
			StatusCode: ptr(http.StatusOK),
			Headers:    Headers{},
			Timestamp:  ptr(time.Now()),
		}
		if md, ok := runtime.ServerMetadataFromContext(ctx); ok {
			src.Headers = FromMetadata(md.HeaderMD)
		}

		var fields []zap.Field
		if id := gatewayRequestID(ctx); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}

		rec, err := n.NormalizeResponse(src)
		if err != nil {
			n.logger.Warn("failed to normalize response", append(fields, zap.Error(err))...)
			return nil
		}

		n.logger.Info("grpc gateway response", append(fields,
			zap.String("summary", rec.String()),
			zap.Object("response", rec))...)

		return nil
	}
}

// gatewayRequestID reads the id MetadataAnnotator attached. Remote handlers
// carry it in outgoing metadata, local ones in incoming metadata.
func gatewayRequestID(ctx context.Context) string {
	for _, from := range []func(context.Context) (metadata.MD, bool){metadata.FromOutgoingContext, metadata.FromIncomingContext} {
		if md, ok := from(ctx); ok {
			if ids := md.Get(requestIDHeader); len(ids) > 0 {
				return ids[0]
			}
		}
	}
	return ""
}

// CreateGatewayMux creates a new gRPC gateway ServeMux with record logging
func CreateGatewayMux(n *Normalizer, opts ...runtime.ServeMuxOption) *runtime.ServeMux {
	// Prepend our options
	allOpts := []runtime.ServeMuxOption{
		runtime.WithMetadata(n.MetadataAnnotator()),
		runtime.WithForwardResponseOption(n.ResponseModifier()),
	}

	// Add user-provided options
	allOpts = append(allOpts, opts...)

	return runtime.NewServeMux(allOpts...)
}
