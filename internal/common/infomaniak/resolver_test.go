package infomaniak

import (
	"strings"
	"testing"

	"infomaniak-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_PathSubstitution(t *testing.T) {
	def := &OperationDefinition{
		Resource: "Projects",
		Key:      "Display A Project",
		Method:   MethodGet,
		Path:     "/1/public_clouds/{public_cloud_id}/projects/{public_cloud_project_id}",
		PathParams: []ParamBinding{
			Bind("public_cloud_id", "path_public_cloud_id"),
			Bind("public_cloud_project_id", "path_public_cloud_project_id"),
		},
	}

	tests := []struct {
		name     string
		bag      ParameterBag
		wantPath string
	}{
		{
			name:     "json numbers render as integers",
			bag:      ParameterBag{"path_public_cloud_id": float64(12), "path_public_cloud_project_id": float64(345)},
			wantPath: "/1/public_clouds/12/projects/345",
		},
		{
			name:     "strings are percent-encoded",
			bag:      ParameterBag{"path_public_cloud_id": "a b", "path_public_cloud_project_id": "x/y"},
			wantPath: "/1/public_clouds/a%20b/projects/x%2Fy",
		},
		{
			name:     "go integers",
			bag:      ParameterBag{"path_public_cloud_id": 7, "path_public_cloud_project_id": int64(8)},
			wantPath: "/1/public_clouds/7/projects/8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Resolve(def, tt.bag)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.False(t, strings.ContainsAny(req.Path, "{}"))
		})
	}
}

func TestResolve_MissingPathParameter(t *testing.T) {
	def := &OperationDefinition{
		Resource:   "Countries",
		Key:        "Display A Country",
		Method:     MethodGet,
		Path:       "/1/countries/{country_id}",
		PathParams: []ParamBinding{Bind("country_id", "path_country_id")},
	}

	tests := []struct {
		name string
		bag  ParameterBag
	}{
		{name: "absent", bag: ParameterBag{}},
		{name: "null", bag: ParameterBag{"path_country_id": nil}},
		{name: "empty string", bag: ParameterBag{"path_country_id": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Resolve(def, tt.bag)
			require.Error(t, err)
			assert.Nil(t, req)

			stdErr, ok := errors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeMissingPathParameter, stdErr.Code)
			assert.Contains(t, stdErr.Message, "country_id")
			assert.False(t, stdErr.Retryable)
		})
	}
}

func TestResolve_ZeroIsAValidPathValue(t *testing.T) {
	def := &OperationDefinition{
		Resource:   "Countries",
		Key:        "Display A Country",
		Method:     MethodGet,
		Path:       "/1/countries/{country_id}",
		PathParams: []ParamBinding{Bind("country_id", "path_country_id")},
	}

	req, err := Resolve(def, ParameterBag{"path_country_id": float64(0)})
	require.NoError(t, err)
	assert.Equal(t, "/1/countries/0", req.Path)
}

func TestResolve_Query(t *testing.T) {
	def := &OperationDefinition{
		Resource:                "Products",
		Key:                     "List Products",
		Method:                  MethodGet,
		Path:                    "/1/products",
		QueryParams:             []ParamBinding{Bind("service_id", "query_service_id")},
		OptionalQueryCollection: "queryParameters",
	}

	t.Run("prefix stripping", func(t *testing.T) {
		req, err := Resolve(def, ParameterBag{
			"query_service_id": float64(3),
			"queryParameters":  map[string]interface{}{"query_foo": float64(1), "query_bar": float64(2)},
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{
			"service_id": float64(3),
			"foo":        float64(1),
			"bar":        float64(2),
		}, req.Query)
	})

	t.Run("absent collection", func(t *testing.T) {
		req, err := Resolve(def, ParameterBag{"query_service_id": "x"})
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"service_id": "x"}, req.Query)
	})

	t.Run("optional entry overrides required on collision", func(t *testing.T) {
		req, err := Resolve(def, ParameterBag{
			"query_service_id": float64(3),
			"queryParameters":  map[string]interface{}{"query_service_id": float64(9)},
		})
		require.NoError(t, err)
		assert.Equal(t, float64(9), req.Query["service_id"])
	})
}

func TestResolve_Body(t *testing.T) {
	t.Run("fields and collection", func(t *testing.T) {
		def := &OperationDefinition{
			Resource:               "Rooms",
			Key:                    "Create A Room",
			Method:                 MethodPost,
			Path:                   "/1/kmeet/rooms",
			BodyFields:             []ParamBinding{Bind("name", "body_name"), Bind("starting_at", "body_starting_at")},
			OptionalBodyCollection: "bodyParameters",
		}

		req, err := Resolve(def, ParameterBag{
			"body_name":      "Standup",
			"bodyParameters": map[string]interface{}{"body_timezone": "Europe/Zurich"},
		})
		require.NoError(t, err)
		assert.Equal(t, MethodPost, req.Method)
		assert.Equal(t, map[string]interface{}{
			"name":     "Standup",
			"timezone": "Europe/Zurich",
		}, req.Body)
	})

	t.Run("body field replaces everything", func(t *testing.T) {
		def := &OperationDefinition{
			Resource:               "Chat",
			Key:                    "Chat Completions",
			Method:                 MethodPost,
			Path:                   "/1/ai/{product_id}/openai/chat/completions",
			PathParams:             []ParamBinding{Bind("product_id", "path_product_id")},
			BodyFields:             []ParamBinding{Bind("model", "body_model")},
			OptionalBodyCollection: "bodyParameters",
			BodyField:              "requestBody",
		}

		payload := map[string]interface{}{
			"model":    "mixtral",
			"messages": []interface{}{map[string]interface{}{"role": "user", "content": "hi"}},
		}
		req, err := Resolve(def, ParameterBag{
			"path_product_id": float64(101),
			"body_model":      "ignored",
			"bodyParameters":  map[string]interface{}{"body_stream": true},
			"requestBody":     payload,
		})
		require.NoError(t, err)
		assert.Equal(t, "/1/ai/101/openai/chat/completions", req.Path)
		assert.Equal(t, payload, req.Body)
	})
}

func TestResolve_DisplayACountry(t *testing.T) {
	r := countriesRegistry(t)
	def, err := r.Lookup("Countries", "Display A Country")
	require.NoError(t, err)

	req, err := Resolve(def, ParameterBag{"path_country_id": float64(41)})
	require.NoError(t, err)

	assert.Equal(t, MethodGet, req.Method)
	assert.Equal(t, "/1/countries/41", req.Path)
	assert.Empty(t, req.Query)
	assert.Empty(t, req.Body)
}
