package httprpc

import (
	"fmt"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

// errorEnvelope is the uniform protocol-level error body:
//
//	{"_type": "error", "_tag": "not_found", "message": "..."}
type errorEnvelope struct {
	Type    string  `json:"_type"`
	Tag     string  `json:"_tag"`
	Message *string `json:"message"`
}

// response is a fully-materialized reply, held in memory until CORS headers
// are merged and it is written out.
type response struct {
	status int
	header http.Header
	body   []byte
}

func (resp response) write(w http.ResponseWriter) {
	for name, values := range resp.header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(resp.status)
	if len(resp.body) > 0 {
		w.Write(resp.body) //nolint:errcheck
	}
}

// statusTag converts an HTTP status code to the snake_case phrase used as
// the envelope's error tag, e.g. 404 becomes "not_found".
func statusTag(code int) string {
	text := http.StatusText(code)
	if text == "" {
		text = "http error"
	}

	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}

// errorResponse builds the protocol error reply for status. 404 and 405
// synthesize a message from the request when none is given; other statuses
// fall back to the bare status phrase, except 400 which passes the message
// through as-is (possibly null).
func errorResponse(status int, r *http.Request, message string) response {
	var msg *string
	switch {
	case status == http.StatusNotFound && message == "":
		m := fmt.Sprintf("The requested URL %s was not found on this service.", r.URL.Path)
		msg = &m
	case status == http.StatusMethodNotAllowed && message == "":
		m := fmt.Sprintf("The requested URL %s was not allowed HTTP method %s.", r.URL.Path, r.Method)
		msg = &m
	case message != "":
		msg = &message
	case status != http.StatusBadRequest:
		m := http.StatusText(status)
		if m == "" {
			m = "http error"
		}
		msg = &m
	}

	return jsonResponse(status, errorEnvelope{Type: "error", Tag: statusTag(status), Message: msg})
}

// jsonResponse serializes body as the reply payload. Bodies reaching here
// are either the static envelope or codec-encoded wire trees, both of which
// always marshal; anything else is a bug worth crashing the request over.
func jsonResponse(status int, body interface{}) response {
	buf, err := json.Marshal(body)
	if err != nil {
		panic(err)
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")

	return response{status: status, header: h, body: buf}
}
