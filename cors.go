package httprpc

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// corsPolicy computes cross-origin response headers for the classic RPC
// path from the configured allow-lists. Templated routes carry no CORS
// metadata, so only fallback responses receive these headers.
type corsPolicy struct {
	// Hostnames allowed to read responses, lowercase.
	allowedOrigins map[string]struct{}
	// Sorted, comma-joined allowed request headers. Empty when none are
	// configured, in which case the header is omitted entirely.
	allowHeaders string
}

func newCORSPolicy(origins, headers []string) *corsPolicy {
	p := &corsPolicy{
		allowedOrigins: make(map[string]struct{}, len(origins)),
	}
	for _, o := range origins {
		p.allowedOrigins[strings.ToLower(strings.TrimSpace(o))] = struct{}{}
	}
	if len(headers) > 0 {
		normalized := make([]string, len(headers))
		for i, h := range headers {
			normalized[i] = strings.ToLower(strings.TrimSpace(h))
		}
		sort.Strings(normalized)
		p.allowHeaders = strings.Join(normalized, ", ")
	}

	return p
}

// headers computes the CORS header set for a fallback-path request. The
// Allow-Origin header is only emitted for an http(s) Origin whose hostname
// is on the allow-list; everything else gets no grant, which browsers treat
// as a cross-origin read denial.
func (p *corsPolicy) headers(r *http.Request) http.Header {
	h := http.Header{}
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Vary", "Origin")
	if p.allowHeaders != "" {
		h.Set("Access-Control-Allow-Headers", p.allowHeaders)
	}
	if origin := r.Header.Get("Origin"); origin != "" {
		u, err := url.Parse(origin)
		if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
			if _, ok := p.allowedOrigins[strings.ToLower(u.Hostname())]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
			}
		}
	}

	return h
}

// mergeHeaders folds src into dst, comma-joining values that share a header
// name rather than overwriting them.
func mergeHeaders(dst, src http.Header) {
	for name, values := range src {
		v := strings.Join(values, ", ")
		if existing := dst.Get(name); existing != "" {
			dst.Set(name, existing+", "+v)
		} else {
			dst.Set(name, v)
		}
	}
}
