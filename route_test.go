package httprpc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyralabs/httprpc/wiretype"
)

func textParam(name string) ParamDesc {
	return ParamDesc{Name: name, Type: wiretype.Direct(wiretype.TextType())}
}

func Test_BuildRoutes_ConstructionErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		methods []MethodDesc
		errMsg  string
	}{
		{
			name: "root path is reserved",
			methods: []MethodDesc{{
				MethodName: "home",
				HTTP:       &HTTPRule{Path: "/", Method: "GET"},
			}},
			errMsg: "the root resource is reserved",
		},
		{
			name: "root path with extra slashes",
			methods: []MethodDesc{{
				MethodName: "home",
				HTTP:       &HTTPRule{Path: "///", Method: "GET"},
			}},
			errMsg: "the root resource is reserved",
		},
		{
			name: "missing path",
			methods: []MethodDesc{{
				MethodName: "getUser",
				HTTP:       &HTTPRule{Method: "GET"},
			}},
			errMsg: "missing annotation parameter: 'path'",
		},
		{
			name: "missing method",
			methods: []MethodDesc{{
				MethodName: "getUser",
				HTTP:       &HTTPRule{Path: "/users/{id}"},
			}},
			errMsg: "missing annotation parameter: 'method'",
		},
		{
			name: "unsatisfied parameters",
			methods: []MethodDesc{{
				MethodName: "getPost",
				Params:     []ParamDesc{textParam("user"), textParam("post")},
				HTTP:       &HTTPRule{Path: "/posts/{post}", Method: "GET"},
			}},
			errMsg: `"/posts/{post}" does not fully satisfy all parameters of getPost(); unsatisfied parameters are: user`,
		},
		{
			name: "duplicate path variable",
			methods: []MethodDesc{{
				MethodName: "getUser",
				Params:     []ParamDesc{textParam("id")},
				HTTP:       &HTTPRule{Path: "/users/{id}/{id}", Method: "GET"},
			}},
			errMsg: "every variable must not be duplicated: id",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := buildRoutes(tc.methods)
			require.Error(t, err)

			var aerr *AnnotationError
			require.True(t, errors.As(err, &aerr))
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func Test_BuildRoutes_WireNameCoverage(t *testing.T) {
	t.Parallel()

	// Coverage is checked against wire names, not facial names.
	methods := []MethodDesc{{
		MethodName: "getUser",
		Params:     []ParamDesc{{Name: "userID", WireName: "user_id", Type: wiretype.Direct(wiretype.TextType())}},
		HTTP:       &HTTPRule{Path: "/users/{user-id}", Method: "GET"},
	}}

	// {user-id} normalizes to user_id, satisfying the wire name.
	routes, err := buildRoutes(methods)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	methods[0].HTTP.Path = "/users/{userID}"
	_, err = buildRoutes(methods)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsatisfied parameters are: user_id")
}

func Test_BuildRoutes_Ordering(t *testing.T) {
	t.Parallel()

	// Routes are ordered by descending template string: "{" sorts above
	// ASCII letters, so the placeholder template is tried first and shadows
	// the literal one. This is the documented crude tie-break, not true
	// specificity matching.
	methods := []MethodDesc{
		{
			MethodName: "currentUser",
			HTTP:       &HTTPRule{Path: "/users/me", Method: "GET"},
		},
		{
			MethodName: "getUser",
			Params:     []ParamDesc{textParam("id")},
			HTTP:       &HTTPRule{Path: "/users/{id}", Method: "GET"},
		},
	}

	routes, err := buildRoutes(methods)
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, "/users/{id}", routes[0].template)
	assert.Equal(t, "/users/me", routes[1].template)

	rt, captured, ok := matchRoute(routes, "GET", "/users/me")
	require.True(t, ok)
	assert.Equal(t, "getUser", rt.method.MethodName)
	assert.Equal(t, map[string]string{"id": "me"}, captured)

	// A longer template sorts above its prefix and is tried first.
	methods = []MethodDesc{
		{
			MethodName: "getUser",
			Params:     []ParamDesc{textParam("id")},
			HTTP:       &HTTPRule{Path: "/users/{id}", Method: "GET"},
		},
		{
			MethodName: "listPosts",
			Params:     []ParamDesc{textParam("id")},
			HTTP:       &HTTPRule{Path: "/users/{id}/posts", Method: "GET"},
		},
	}
	routes, err = buildRoutes(methods)
	require.NoError(t, err)
	assert.Equal(t, "/users/{id}/posts", routes[0].template)
}

func Test_MatchRoute(t *testing.T) {
	t.Parallel()

	methods := []MethodDesc{
		{
			MethodName: "getUser",
			Params:     []ParamDesc{textParam("id")},
			HTTP:       &HTTPRule{Path: "/users/{id}", Method: "GET"},
		},
		{
			MethodName: "deleteUser",
			Params:     []ParamDesc{textParam("id")},
			HTTP:       &HTTPRule{Path: "/users/{id}", Method: "DELETE"},
		},
	}
	routes, err := buildRoutes(methods)
	require.NoError(t, err)

	rt, captured, ok := matchRoute(routes, "GET", "/users/42")
	require.True(t, ok)
	assert.Equal(t, "getUser", rt.method.MethodName)
	assert.Equal(t, "42", captured["id"])

	rt, _, ok = matchRoute(routes, "DELETE", "/users/42")
	require.True(t, ok)
	assert.Equal(t, "deleteUser", rt.method.MethodName)

	// Structural match with a different verb falls through entirely.
	_, _, ok = matchRoute(routes, "PUT", "/users/42")
	assert.False(t, ok)

	_, _, ok = matchRoute(routes, "GET", "/users/42/extra")
	assert.False(t, ok)
}
