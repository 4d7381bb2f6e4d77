package httprpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Error is a protocol-level error envelope decoded from a reply.
type Error struct {
	Tag     string  `json:"_tag"`
	Message *string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message != nil {
		return fmt.Sprintf("rpc: %s: %s", e.Tag, *e.Message)
	}
	return "rpc: " + e.Tag
}

// CallError is a non-200 reply that does not carry the protocol envelope,
// typically a method's declared domain error in its own serialized shape.
type CallError struct {
	Status int
	Body   json.RawMessage
}

func (e *CallError) Error() string {
	return fmt.Sprintf("rpc: call failed with status %d: %s", e.Status, e.Body)
}

// Client performs classic RPC calls against an httprpc endpoint.
type Client struct {
	base *url.URL
	opts clientOptions
}

// Dial returns a client for the given target URL. The scheme defaults to
// http; the classic call path is whatever path the target carries
// (normally the root resource).
func Dial(target string, opt ...ClientOption) (*Client, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing target %q", target)
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}

	opts := defaultClientOptions()
	for _, o := range opt {
		o.apply(&opts)
	}

	return &Client{base: u, opts: opts}, nil
}

// Call invokes the wire method with the given argument object and returns
// the raw JSON result. Transport failures are retried per the client's
// backoff strategy; a reply with a non-200 status is permanent and decodes
// into *Error (protocol envelope) or *CallError (domain error payload).
func (c *Client) Call(ctx context.Context, method string, args interface{}) (json.RawMessage, error) {
	if args == nil {
		args = map[string]interface{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling arguments")
	}

	u := *c.base
	q := u.Query()
	q.Set("method", method)
	u.RawQuery = q.Encode()
	target := u.String()

	var result json.RawMessage
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-Id", uuid.New().String())

		resp, err := c.opts.httpClient.Do(req)
		if err != nil {
			c.opts.log.Debugw("call attempt failed", "method", method, "err", err)
			return err
		}
		defer resp.Body.Close()

		buf, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(decodeCallError(resp.StatusCode, buf))
		}
		result = buf

		return nil
	}

	if err := backoff.Retry(call, backoff.WithContext(c.opts.newBackOff(), ctx)); err != nil {
		return nil, err
	}

	return result, nil
}

// decodeCallError interprets a non-200 reply body. Protocol failures carry
// the error envelope; anything else is surfaced raw.
func decodeCallError(status int, body []byte) error {
	var env struct {
		Type    string  `json:"_type"`
		Tag     string  `json:"_tag"`
		Message *string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Type == "error" {
		return &Error{Tag: env.Tag, Message: env.Message}
	}

	return &CallError{Status: status, Body: append(json.RawMessage{}, body...)}
}
