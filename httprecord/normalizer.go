package httprecord

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the configuration for a Normalizer
type Config struct {
	// Policy filters the headers of every record
	Policy `yaml:",inline" mapstructure:",squash"`
	// SkipPaths lists URL paths and gRPC full methods that are not logged
	SkipPaths []string `json:"skip_paths" yaml:"skip_paths" mapstructure:"skip_paths" validate:"omitempty,dive,startswith=/"`
	// Debug logs a debug entry for every skipped request
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`
	// Transforms rewrite header values after filtering, keyed by header name
	Transforms map[string]TransformFunc `json:"-" yaml:"-" mapstructure:"-"`
}

// Normalizer applies a Config to records and logs request/response pairs
// coming through its HTTP and gRPC hooks. It is safe for concurrent use.
type Normalizer struct {
	config    *Config
	skipPaths map[string]bool
	parser    RawHeaderParser
	logger    *zap.Logger
}

// NewNormalizer creates a new Normalizer with a copy of the given
// configuration. Later changes to config do not affect it.
func NewNormalizer(config *Config) *Normalizer {
	config = config.clone()

	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &Normalizer{
		config:    config,
		skipPaths: skipPaths,
		parser:    DefaultRawHeaderParser,
		logger:    zap.NewNop(),
	}
}

// SetLogger sets the logger records are written to. A nil logger discards them.
func (n *Normalizer) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	n.logger = logger
}

// Policy returns a copy of the header policy of the normalizer.
func (n *Normalizer) Policy() *Policy {
	return n.config.Policy.clone()
}

// Validate validates the normalizer configuration
func (n *Normalizer) Validate() error {
	return ValidateConfig(n.config)
}

// NormalizeRequest is NormalizeRequest with the normalizer's policy, followed
// by its header transforms.
func (n *Normalizer) NormalizeRequest(req any) (*RequestRecord, error) {
	rec, err := NormalizeRequest(req, &n.config.Policy)
	if err != nil {
		return nil, err
	}
	if len(n.config.Transforms) > 0 {
		rec.Headers = rec.Headers.Transform(n.config.Transforms)
	}
	return rec, nil
}

// NormalizeResponse is NormalizeResponse with the normalizer's policy and raw
// header parser, followed by its header transforms.
func (n *Normalizer) NormalizeResponse(res any) (*ResponseRecord, error) {
	rec, err := normalizeResponse(res, &n.config.Policy, n.parser)
	if err != nil {
		return nil, err
	}
	if len(n.config.Transforms) > 0 {
		rec.Headers = rec.Headers.Transform(n.config.Transforms)
	}
	return rec, nil
}

// StringifyRequest is the package-level StringifyRequest. The summary never
// includes headers other than host, so the policy does not apply.
func (n *Normalizer) StringifyRequest(req any) (string, error) {
	return StringifyRequest(req)
}

// StringifyResponse is the package-level StringifyResponse.
func (n *Normalizer) StringifyResponse(res any) (string, error) {
	return StringifyResponse(res)
}

// clone copies c deeply enough that no slice or map is shared. A nil c
// yields an empty Config.
func (c *Config) clone() *Config {
	if c == nil {
		return &Config{}
	}

	out := &Config{
		Policy:    *c.Policy.clone(),
		SkipPaths: cloneStrings(c.SkipPaths),
		Debug:     c.Debug,
	}
	if c.Transforms != nil {
		out.Transforms = make(map[string]TransformFunc, len(c.Transforms))
		for name, transform := range c.Transforms {
			out.Transforms[name] = transform
		}
	}
	return out
}

func (n *Normalizer) skip(path string) bool {
	if !n.skipPaths[path] {
		return false
	}
	if n.config.Debug {
		n.logger.Debug("skipping request", zap.String("path", path))
	}
	return true
}

// logExchange writes one entry for a request/response pair. Normalization
// errors are logged and never surface to the caller.
func (n *Normalizer) logExchange(msg string, req, res any, fields ...zap.Field) {
	reqRec, err := n.NormalizeRequest(req)
	if err != nil {
		n.logger.Warn("failed to normalize request", append(fields, zap.Error(err))...)
		return
	}

	resRec, err := n.NormalizeResponse(res)
	if err != nil {
		n.logger.Warn("failed to normalize response", append(fields, zap.Error(err))...)
		return
	}

	fields = append(fields,
		zap.String("summary", reqRec.String()+" "+resRec.String()),
		zap.Object("request", reqRec),
		zap.Object("response", resRec),
	)
	n.logger.Log(levelForStatus(resRec.StatusCode), msg, fields...)
}

func levelForStatus(statusCode *int) zapcore.Level {
	switch {
	case statusCode == nil:
		return zapcore.InfoLevel
	case *statusCode >= 500:
		return zapcore.ErrorLevel
	case *statusCode >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// Builder helps build Normalizer configurations
type Builder struct {
	config *Config
	parser RawHeaderParser
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		config: &Config{},
	}
}

// AllowHeaders restricts records to the given headers. Calling it with no
// names admits no headers at all.
func (b *Builder) AllowHeaders(names ...string) *Builder {
	b.config.AllowHeaders = append(make([]string, 0, len(names)), names...)
	return b
}

// DenyHeaders removes the given headers from records
func (b *Builder) DenyHeaders(names ...string) *Builder {
	b.config.DenyHeaders = append(b.config.DenyHeaders, names...)
	return b
}

// WithTransform sets a value transform for a header
func (b *Builder) WithTransform(header string, transform TransformFunc) *Builder {
	if b.config.Transforms == nil {
		b.config.Transforms = make(map[string]TransformFunc)
	}
	b.config.Transforms[header] = transform
	return b
}

// WithRawHeaderParser replaces DefaultRawHeaderParser
func (b *Builder) WithRawHeaderParser(parser RawHeaderParser) *Builder {
	b.parser = parser
	return b
}

// SkipPaths sets paths to skip logging
func (b *Builder) SkipPaths(paths ...string) *Builder {
	b.config.SkipPaths = paths
	return b
}

// Debug enables debug logging
func (b *Builder) Debug(debug bool) *Builder {
	b.config.Debug = debug
	return b
}

// Build creates the Normalizer
func (b *Builder) Build() *Normalizer {
	n := NewNormalizer(b.config)
	if b.parser != nil {
		n.parser = b.parser
	}
	return n
}

// Predefined header lists

// SensitiveHeaders returns headers that commonly carry credentials
func SensitiveHeaders() []string {
	return []string{
		"authorization",
		"proxy-authorization",
		"cookie",
		"set-cookie",
		"x-api-key",
	}
}

// TracingHeaders returns tracing-related headers
func TracingHeaders() []string {
	return []string{
		"traceparent",
		"tracestate",
		"x-request-id",
		"x-correlation-id",
		"x-trace-id",
		"x-span-id",
	}
}
