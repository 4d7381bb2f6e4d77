package httprpc

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lyralabs/httprpc/logger"
	"github.com/lyralabs/httprpc/wiretype"
)

// A ServerOption sets options such as CORS allow-lists, the wire codec and
// instrumentation.
type ServerOption interface {
	apply(*serverOptions)
}

type serverOptions struct {
	// Cross-origin allow-lists for the classic RPC path.
	allowedOrigins []string
	allowedHeaders []string

	// The wire value codec used to decode arguments, serialize results and
	// validate return types.
	codec wiretype.Codec

	log logger.Logger

	// The registry dispatch metrics are registered against. Nil disables
	// instrumentation.
	metrics prometheus.Registerer

	// The request body read limit in bytes.
	maxBodyBytes int64
}

// funcServerOption wraps a function that modifies serverOptions into an
// implementation of the ServerOption interface.
type funcServerOption struct {
	f func(*serverOptions)
}

func newFuncServerOption(f func(*serverOptions)) *funcServerOption {
	return &funcServerOption{
		f: f,
	}
}

func (fso *funcServerOption) apply(so *serverOptions) {
	fso.f(so)
}

// WithAllowedOrigins returns a ServerOption that sets the cross-origin
// hostnames allowed to read responses on the classic RPC path. Hostnames
// are matched case-insensitively against the request's Origin header.
func WithAllowedOrigins(origins ...string) ServerOption {
	return newFuncServerOption(func(o *serverOptions) {
		o.allowedOrigins = origins
	})
}

// WithAllowedHeaders returns a ServerOption that sets the request headers
// advertised in Access-Control-Allow-Headers on the classic RPC path.
func WithAllowedHeaders(headers ...string) ServerOption {
	return newFuncServerOption(func(o *serverOptions) {
		o.allowedHeaders = headers
	})
}

// WithCodec returns a ServerOption that replaces the default JSON wire
// codec.
func WithCodec(c wiretype.Codec) ServerOption {
	return newFuncServerOption(func(o *serverOptions) {
		o.codec = c
	})
}

// WithLogger returns a ServerOption that sets the server logger. The
// default discards everything.
func WithLogger(l logger.Logger) ServerOption {
	return newFuncServerOption(func(o *serverOptions) {
		o.log = l
	})
}

// WithMetrics returns a ServerOption that registers dispatch metrics with r.
func WithMetrics(r prometheus.Registerer) ServerOption {
	return newFuncServerOption(func(o *serverOptions) {
		o.metrics = r
	})
}

// WithMaxBodyBytes returns a ServerOption that sets the request body read
// limit in bytes.
func WithMaxBodyBytes(n int64) ServerOption {
	return newFuncServerOption(func(o *serverOptions) {
		o.maxBodyBytes = n
	})
}

var defaultServerOptions = serverOptions{
	codec:        wiretype.JSONCodec{},
	maxBodyBytes: int64(10_000_000),
}
