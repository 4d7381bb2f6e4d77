package httprpc

import (
	"net/http"

	"github.com/cenkalti/backoff"

	"github.com/lyralabs/httprpc/logger"
)

// clientOptions configure a Dial call. clientOptions are set by the
// ClientOption values passed to Dial.
type clientOptions struct {
	httpClient *http.Client
	newBackOff func() backoff.BackOff
	log        logger.Logger
}

// ClientOption configures how the client performs calls.
type ClientOption interface {
	apply(*clientOptions)
}

// funcClientOption wraps a function that modifies clientOptions into an
// implementation of the ClientOption interface.
type funcClientOption struct {
	f func(*clientOptions)
}

func newFuncClientOption(f func(*clientOptions)) *funcClientOption {
	return &funcClientOption{
		f: f,
	}
}

func (fco *funcClientOption) apply(co *clientOptions) {
	fco.f(co)
}

// WithHTTPClient returns a ClientOption that sets the underlying HTTP
// client, e.g. to configure timeouts or a custom transport.
func WithHTTPClient(c *http.Client) ClientOption {
	return newFuncClientOption(func(o *clientOptions) {
		o.httpClient = c
	})
}

// WithRetry returns a ClientOption that retries transport-level call
// failures up to maxRetries times with exponential backoff. Replies with a
// non-200 status are never retried.
func WithRetry(maxRetries uint64) ClientOption {
	return newFuncClientOption(func(o *clientOptions) {
		o.newBackOff = func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries)
		}
	})
}

// WithCallLogger returns a ClientOption that sets the client logger. The
// default discards everything.
func WithCallLogger(l logger.Logger) ClientOption {
	return newFuncClientOption(func(o *clientOptions) {
		o.log = l
	})
}

func defaultClientOptions() clientOptions {
	return clientOptions{
		httpClient: &http.Client{},
		newBackOff: func() backoff.BackOff {
			return &backoff.StopBackOff{}
		},
		log: logger.Nop(),
	}
}
