// Package httprpc serves pre-generated RPC services over HTTP. A service
// registers a static method table once; each method is then reachable as a
// classic RPC call (POST /?method=<name> with a JSON argument object) and,
// when its descriptor carries an HTTP rule, through a RESTful URI template.
//
// Responses are always application/json. Protocol failures use the uniform
// envelope {"_type": "error", "_tag": "<status_phrase>", "message": ...};
// a method's declared domain errors are serialized in their own shape at
// HTTP 400.
package httprpc

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/lyralabs/httprpc/logger"
	"github.com/lyralabs/httprpc/wiretype"
)

// Server dispatches HTTP requests to a registered RPC service. It
// implements http.Handler. The route table and service metadata are built
// at registration and read-only afterwards, so a single Server is safe to
// share across any number of concurrently-handled requests without locking;
// each request runs synchronously end-to-end on the transport's goroutine.
type Server struct {
	opts serverOptions
	log  logger.Logger

	service *serviceInfo
	routes  []route
	cors    *corsPolicy
	metrics *serverMetrics
}

// NewServer constructs a dispatcher. A service must be registered with
// RegisterService before the server handles requests.
func NewServer(opt ...ServerOption) *Server {
	opts := defaultServerOptions
	for _, o := range opt {
		o.apply(&opts)
	}

	s := &Server{
		opts: opts,
		log:  opts.log,
		cors: newCORSPolicy(opts.allowedOrigins, opts.allowedHeaders),
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if opts.metrics != nil {
		s.metrics = newServerMetrics(opts.metrics)
	}

	return s
}

// RegisterService registers a service and its implementation with the
// server. The route table is built here, so every invalid HTTP rule is
// rejected now as an *AnnotationError rather than at request time.
func (s *Server) RegisterService(sd *ServiceDesc, impl interface{}) error {
	if s.service != nil {
		return errors.New("httprpc: a service is already registered")
	}

	info := &serviceInfo{
		serviceImpl: impl,
		methods:     make(map[string]*MethodDesc, len(sd.Methods)),
		wireNames:   make(map[string]string, len(sd.Methods)),
	}
	for i := range sd.Methods {
		d := &sd.Methods[i]
		info.methods[d.MethodName] = d
		info.wireNames[d.wireName()] = d.MethodName
	}

	routes, err := buildRoutes(sd.Methods)
	if err != nil {
		return err
	}

	s.service = info
	s.routes = routes
	s.log.Infow("service registered",
		"service", sd.ServiceName, "methods", len(sd.Methods), "routes", len(routes))

	return nil
}

// invalidJSONError carries the offending payload for the 400 message.
type invalidJSONError struct {
	payload string
}

func (e *invalidJSONError) Error() string { return e.payload }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := r.Header.Get("X-Request-Id")
	if reqID == "" {
		reqID = uuid.New().String()
	}

	resp, method := s.dispatch(r)

	w.Header().Set("X-Request-Id", reqID)
	resp.write(w)

	s.metrics.observe(method, resp.status, time.Since(start))
	s.log.Debugw("request dispatched",
		"id", reqID, "method", method, "verb", r.Method, "path", r.URL.Path,
		"status", resp.status)
}

// dispatch runs one request through the routing state machine and returns
// the materialized response along with the wire method name it resolved (if
// any) for instrumentation.
//
// A templated route supplies the method and, for GET/DELETE, its arguments
// from the captured path variables; other verbs read a JSON body. With no
// route match, only the classic call path remains: POST with `method` in
// the query string, or an OPTIONS preflight answered with CORS headers
// alone. CORS headers are computed only on that fallback path and merged
// into whatever response the RPC stage produces.
func (s *Server) dispatch(r *http.Request) (response, string) {
	var (
		routed        bool
		serviceMethod string
		payload       map[string]interface{}
		cors          http.Header
		errResp       *response
	)

	if rt, captured, ok := matchRoute(s.routes, r.Method, r.URL.Path); ok {
		routed = true
		serviceMethod = rt.method.wireName()
		if r.Method == http.MethodGet || r.Method == http.MethodDelete {
			payload = templatePayload(rt.method, captured)
		} else {
			var err error
			if payload, err = s.parseJSONPayload(r); err != nil {
				er := errorResponse(http.StatusBadRequest, r,
					fmt.Sprintf("Invalid JSON payload: '%s'.", err))
				errResp = &er
			}
		}
	} else {
		if r.Method != http.MethodPost && r.Method != http.MethodOptions {
			return errorResponse(http.StatusMethodNotAllowed, r, ""), ""
		}
		cors = s.cors.headers(r)
		if r.Method == http.MethodOptions {
			// Preflight: CORS headers only. No body, no content type.
			return response{status: http.StatusOK, header: cors}, ""
		}
		serviceMethod = r.URL.Query().Get("method")
		var err error
		if payload, err = s.parseJSONPayload(r); err != nil {
			er := errorResponse(http.StatusBadRequest, r,
				fmt.Sprintf("Invalid JSON payload: '%s'.", err))
			errResp = &er
		}
	}

	if errResp != nil {
		return *errResp, serviceMethod
	}
	if serviceMethod == "" {
		return errorResponse(http.StatusBadRequest, r, "`method` is missing."), ""
	}

	resp, known := s.rpc(r, serviceMethod, payload)
	if !known {
		status := http.StatusBadRequest
		if routed {
			status = http.StatusNotFound
		}
		return errorResponse(status, r,
			fmt.Sprintf("No service method `%s` found.", serviceMethod)), serviceMethod
	}

	mergeHeaders(resp.header, cors)

	return resp, serviceMethod
}

// rpc resolves the wire method name, binds arguments, invokes the handler
// and validates the result. The boolean is false when no method carries the
// wire name; every other outcome is already a materialized response.
func (s *Server) rpc(r *http.Request, serviceMethod string, payload map[string]interface{}) (response, bool) {
	facialName, ok := s.service.wireNames[serviceMethod]
	if !ok {
		return response{}, false
	}
	md := s.service.methods[facialName]
	if md.Handler == nil {
		return errorResponse(http.StatusBadRequest, r,
			fmt.Sprintf("Remote procedure '%s' is not callable.", serviceMethod)), true
	}

	args, err := bindArguments(s.opts.codec, md, payload)
	if err != nil {
		return errorResponse(http.StatusBadRequest, r, err.Error()), true
	}

	result, herr := md.Handler(s.service.serviceImpl, r.Context(), args)
	if herr != nil {
		var derr DomainError
		if md.Errors != nil && errors.As(herr, &derr) {
			wire, eerr := s.opts.codec.Encode(derr.ErrorValue())
			if eerr != nil {
				panic(eerr)
			}
			return jsonResponse(http.StatusBadRequest, wire), true
		}
		// Anything outside the method's declared error union is a bug in
		// the service. Let the transport's fault boundary take it; the
		// failure is fatal to this request only.
		panic(herr)
	}

	typ := md.Returns.Resolve()
	wire, valid := validateReturn(s.opts.codec, typ, result)
	if !valid {
		return errorResponse(http.StatusBadRequest, r, fmt.Sprintf(
			"Incorrect return type '%s' for '%s'. expected '%s'.",
			wiretype.NameOf(result), serviceMethod, typ)), true
	}

	return jsonResponse(http.StatusOK, wire), true
}

// templatePayload filters the captured path variables down to the method's
// parameter wire names. Values stay raw path substrings: no percent
// decoding and no query-string typing is applied.
func templatePayload(md *MethodDesc, captured map[string]string) map[string]interface{} {
	payload := make(map[string]interface{}, len(md.Params))
	for i := range md.Params {
		name := md.Params[i].wireName()
		if v, ok := captured[name]; ok {
			payload[name] = v
		}
	}

	return payload
}

// parseJSONPayload decodes the request body as a JSON object. An empty body
// decodes to an empty mapping.
func (s *Server) parseJSONPayload(r *http.Request) (map[string]interface{}, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.opts.maxBodyBytes))
	if err != nil {
		return nil, &invalidJSONError{payload: string(body)}
	}
	if len(body) == 0 {
		return map[string]interface{}{}, nil
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &invalidJSONError{payload: string(body)}
	}

	return payload, nil
}
