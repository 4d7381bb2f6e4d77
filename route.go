package httprpc

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lyralabs/httprpc/internal/uritemplate"
)

// AnnotationError reports an invalid HTTP rule encountered while building
// the route table. It is returned from RegisterService, before any request
// is served.
type AnnotationError struct {
	msg string
}

func (e *AnnotationError) Error() string { return e.msg }

func annotationErrorf(format string, args ...interface{}) *AnnotationError {
	return &AnnotationError{msg: fmt.Sprintf(format, args...)}
}

// route is one compiled, immutable binding from (verb, path template) to a
// target method.
type route struct {
	template string
	matcher  *uritemplate.Template
	verb     string
	method   *MethodDesc
}

// buildRoutes compiles every descriptor's HTTP rule and orders the result
// by descending template string. The ordering is a deliberate, crude
// tie-break: templates carrying more literal text before their first
// placeholder sort later and are therefore tried first, and the first
// structural match wins. It is not longest-prefix or true specificity
// matching.
func buildRoutes(methods []MethodDesc) ([]route, error) {
	var routes []route
	for i := range methods {
		md := &methods[i]
		if md.HTTP == nil {
			continue
		}
		rule := md.HTTP
		if rule.Path == "" {
			return nil, annotationErrorf("missing annotation parameter: 'path'")
		}
		if rule.Method == "" {
			return nil, annotationErrorf("missing annotation parameter: 'method'")
		}
		if strings.Trim(rule.Path, "/") == "" {
			return nil, annotationErrorf(
				"the root resource is reserved; disallowed to route to the root")
		}
		tmpl, err := uritemplate.Compile(rule.Path)
		if err != nil {
			return nil, &AnnotationError{msg: err.Error()}
		}
		captured := make(map[string]struct{}, len(tmpl.Vars()))
		for _, v := range tmpl.Vars() {
			captured[v] = struct{}{}
		}
		var unsatisfied []string
		for j := range md.Params {
			name := md.Params[j].wireName()
			if _, ok := captured[name]; !ok {
				unsatisfied = append(unsatisfied, name)
			}
		}
		if len(unsatisfied) > 0 {
			sort.Strings(unsatisfied)
			return nil, annotationErrorf(
				"%q does not fully satisfy all parameters of %s(); unsatisfied parameters are: %s",
				rule.Path, md.MethodName, strings.Join(unsatisfied, ", "))
		}
		routes = append(routes, route{
			template: rule.Path,
			matcher:  tmpl,
			verb:     strings.ToUpper(rule.Method),
			method:   md,
		})
	}
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].template > routes[j].template
	})

	return routes, nil
}

// matchRoute returns the first route in order whose template matches path
// and whose verb matches. A template match with a different verb falls
// through to later routes (and ultimately to the classic call path).
func matchRoute(routes []route, verb, path string) (*route, map[string]string, bool) {
	for i := range routes {
		r := &routes[i]
		captured, ok := r.matcher.Match(path)
		if ok && verb == r.verb {
			return r, captured, true
		}
	}

	return nil, nil, false
}
