package infomaniak

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fake transport
// ==========================

type transportCall struct {
	kind   string // request | allItems | allPages
	method Method
	path   string
	body   interface{}
	query  map[string]interface{}
}

type fakeTransport struct {
	calls    []transportCall
	response interface{}
	pages    []interface{}
	err      error
	auth     []string
}

func (f *fakeTransport) record(kind string, method Method, path string, body interface{}, query map[string]interface{}) {
	f.calls = append(f.calls, transportCall{kind: kind, method: method, path: path, body: body, query: cloneQuery(query)})
}

func (f *fakeTransport) Request(_ context.Context, method Method, path string, body interface{}, query map[string]interface{}) (interface{}, error) {
	f.record("request", method, path, body, query)
	return f.response, f.err
}

func (f *fakeTransport) RequestAllItems(_ context.Context, method Method, path string, body interface{}, query map[string]interface{}) ([]interface{}, error) {
	f.record("allItems", method, path, body, query)
	return f.pages, f.err
}

func (f *fakeTransport) RequestAllPages(_ context.Context, method Method, path string, body interface{}, query map[string]interface{}) ([]interface{}, error) {
	f.record("allPages", method, path, body, query)
	return f.pages, f.err
}

func (f *fakeTransport) Transport(authentication string) (Transport, error) {
	f.auth = append(f.auth, authentication)
	return f, nil
}

func records(n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = map[string]interface{}{"id": float64(i + 1)}
	}
	return out
}

// ==========================
// Decision table
// ==========================

func TestDispatch_DecisionTable(t *testing.T) {
	tests := []struct {
		name       string
		pagination PaginationMode
		method     Method
		opts       Options
		query      map[string]interface{}
		wantKind   string
		wantQuery  map[string]interface{}
	}{
		{
			name:       "none paginates nothing",
			pagination: PaginationNone,
			method:     MethodGet,
			opts:       Options{ReturnAll: true, Limit: 10},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{},
		},
		{
			name:       "limit-skip returnAll",
			pagination: PaginationLimitSkip,
			method:     MethodGet,
			opts:       Options{ReturnAll: true},
			wantKind:   "allItems",
			wantQuery:  map[string]interface{}{},
		},
		{
			name:       "limit-skip single page injects limit and skip",
			pagination: PaginationLimitSkip,
			method:     MethodGet,
			opts:       Options{Limit: 50},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{"limit": 50, "skip": 0},
		},
		{
			name:       "limit-skip keeps supplied skip",
			pagination: PaginationLimitSkip,
			method:     MethodGet,
			opts:       Options{Limit: 50},
			query:      map[string]interface{}{"skip": float64(20)},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{"limit": 50, "skip": float64(20)},
		},
		{
			name:       "limit-skip null skip defaults",
			pagination: PaginationLimitSkip,
			method:     MethodGet,
			opts:       Options{Limit: 5},
			query:      map[string]interface{}{"skip": nil},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{"limit": 5, "skip": 0},
		},
		{
			name:       "page-per-page returnAll",
			pagination: PaginationPagePerPage,
			method:     MethodGet,
			opts:       Options{ReturnAll: true},
			wantKind:   "allPages",
			wantQuery:  map[string]interface{}{},
		},
		{
			name:       "page-per-page single page injects per_page and page",
			pagination: PaginationPagePerPage,
			method:     MethodGet,
			opts:       Options{Limit: 25},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{"per_page": 25, "page": 1},
		},
		{
			name:       "page-per-page keeps supplied page",
			pagination: PaginationPagePerPage,
			method:     MethodGet,
			opts:       Options{Limit: 25},
			query:      map[string]interface{}{"page": float64(3)},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{"per_page": 25, "page": float64(3)},
		},
		{
			name:       "zero limit falls back to default",
			pagination: PaginationLimitSkip,
			method:     MethodGet,
			opts:       Options{},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{"limit": DefaultLimit, "skip": 0},
		},
		{
			name:       "non-GET ignores returnAll",
			pagination: PaginationLimitSkip,
			method:     MethodPost,
			opts:       Options{ReturnAll: true, Limit: 10},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{},
		},
		{
			name:       "DELETE ignores page-per-page",
			pagination: PaginationPagePerPage,
			method:     MethodDelete,
			opts:       Options{Limit: 10},
			wantKind:   "request",
			wantQuery:  map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{response: []interface{}{}, pages: records(2)}
			def := &OperationDefinition{Resource: "R", Key: "O", Method: tt.method, Path: "/1/x", Pagination: tt.pagination}
			query := tt.query
			if query == nil {
				query = map[string]interface{}{}
			}
			req := &ResolvedRequest{Method: tt.method, Path: "/1/x", Query: query}

			_, err := Dispatch(context.Background(), tr, def, req, tt.opts)
			require.NoError(t, err)

			require.Len(t, tr.calls, 1)
			assert.Equal(t, tt.wantKind, tr.calls[0].kind)
			assert.Equal(t, tt.wantQuery, tr.calls[0].query)
		})
	}
}

func TestDispatch_ReturnAllIsPreFlattened(t *testing.T) {
	tr := &fakeTransport{pages: records(230)}
	def := &OperationDefinition{Method: MethodGet, Path: "/1/countries", Pagination: PaginationLimitSkip}

	items, err := Dispatch(context.Background(), tr, def, &ResolvedRequest{Method: MethodGet, Path: "/1/countries"}, Options{ReturnAll: true})
	require.NoError(t, err)
	assert.Len(t, items, 230)
}

func TestDispatch_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	tr := &fakeTransport{err: boom}
	def := &OperationDefinition{Method: MethodGet, Path: "/1/x"}

	items, err := Dispatch(context.Background(), tr, def, &ResolvedRequest{Method: MethodGet, Path: "/1/x"}, Options{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, items)
}

// ==========================
// Normalization
// ==========================

func TestNormalizeResponse(t *testing.T) {
	object := map[string]interface{}{"result": "success", "data": map[string]interface{}{"id": float64(41)}}

	tests := []struct {
		name string
		resp interface{}
		full bool
		want []interface{}
	}{
		{name: "bare array", resp: records(3), want: records(3)},
		{name: "bare array with full response", resp: records(3), full: true, want: records(3)},
		{name: "object with full response", resp: object, full: true, want: []interface{}{object}},
		{name: "object unwrapped", resp: object, want: []interface{}{map[string]interface{}{"id": float64(41)}}},
		{
			name: "data array unwrapped",
			resp: map[string]interface{}{"result": "success", "data": records(2), "total": float64(2)},
			want: records(2),
		},
		{
			name: "scalar data keeps envelope",
			resp: map[string]interface{}{"result": "success", "data": true},
			want: []interface{}{map[string]interface{}{"result": "success", "data": true}},
		},
		{
			name: "no data key keeps object",
			resp: map[string]interface{}{"id": float64(1)},
			want: []interface{}{map[string]interface{}{"id": float64(1)}},
		},
		{name: "empty body", resp: nil, want: []interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeResponse(tt.resp, tt.full))
		})
	}
}

func TestOptionsFromBag(t *testing.T) {
	defaults := Options{Limit: DefaultLimit, Authentication: AuthAPIKey}

	opts := OptionsFromBag(ParameterBag{
		"returnAll":          false,
		"limit":              float64(10),
		"returnFullResponse": "true",
		"authentication":     "oauth2",
	}, defaults)
	assert.Equal(t, Options{Limit: 10, ReturnFullResponse: true, Authentication: AuthOAuth2}, opts)

	assert.Equal(t, defaults, OptionsFromBag(ParameterBag{}, defaults))
}
