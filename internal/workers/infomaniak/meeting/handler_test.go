package meeting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"
	"infomaniak-workers/internal/common/nodeworker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []string{"Calendars", "Events", "Rooms"}, registry.Resources())
	assert.Empty(t, registry.Warnings())
}

func TestDefinitions_ListEventsAlwaysSendsRange(t *testing.T) {
	registry, err := NewRegistry()
	require.NoError(t, err)

	def, err := registry.Lookup("Events", "List Events")
	require.NoError(t, err)

	req, err := infomaniak.Resolve(def, infomaniak.ParameterBag{
		"query_calendar_id": float64(12),
		"query_from":        "2026-01-01 00:00:00",
		"queryParameters":   map[string]interface{}{"query_with": "attendees", "query_to": "override"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"calendar_id": float64(12),
		"from":        "2026-01-01 00:00:00",
		"to":          "override",
		"with":        "attendees",
	}, req.Query)
}

// ==========================
// End-to-end through the worker
// ==========================

func TestHandler_CreateRooms(t *testing.T) {
	var bodies []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/1/kmeet/rooms", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]interface{}
		assert.NoError(t, json.Unmarshal(raw, &body))
		bodies = append(bodies, body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"result": "success",
			"data":   map[string]interface{}{"id": len(bodies), "title": body["title"]},
		})
	}))
	defer srv.Close()

	client := infomaniak.NewClient(infomaniak.ClientConfig{BaseURL: srv.URL}, srv.Client(), logger.NewNoOpLogger(),
		infomaniak.WithAPIToken("token"))
	handler, err := NewHandler(nodeworker.HandlerOptions{Logger: logger.NewTestLogger(t), Transports: client})
	require.NoError(t, err)

	out, err := handler.Execute(context.Background(), &nodeworker.Input{
		Resource:  "Rooms",
		Operation: "Create A Room",
		Records: []infomaniak.ParameterBag{
			{"body_calendar_id": float64(1), "body_title": "Standup", "bodyParameters": map[string]interface{}{"body_description": "daily"}},
			{"body_calendar_id": float64(1), "body_title": "Retro"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, out.ItemCount)
	assert.Equal(t, "meeting", out.Node)
	require.Len(t, bodies, 2)
	assert.Equal(t, map[string]interface{}{"calendar_id": float64(1), "title": "Standup", "description": "daily"}, bodies[0])
	assert.Equal(t, map[string]interface{}{"calendar_id": float64(1), "title": "Retro"}, bodies[1])
	assert.Equal(t, "Retro", out.Items[1].(map[string]interface{})["title"])
}
