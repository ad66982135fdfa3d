package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	stderrors "infomaniak-workers/internal/common/errors"
	"infomaniak-workers/internal/common/infomaniak"
	"infomaniak-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (m *memoryRecorder) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return m.err
}

func TestNewEntry(t *testing.T) {
	ctx := ContextWithJob(context.Background(), JobInfo{JobKey: 7, CorrelationID: "corr-1"})

	t.Run("success", func(t *testing.T) {
		e := NewEntry(ctx, infomaniak.Execution{
			Node: "core-resources", Resource: "Countries", Operation: "Display A Country",
			Method: infomaniak.MethodGet, Path: "/1/countries/41", ItemCount: 1,
			Duration: 1500 * time.Millisecond,
		})
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, int64(7), e.JobKey)
		assert.Equal(t, "corr-1", e.CorrelationID)
		assert.Equal(t, StatusSuccess, e.Status)
		assert.Equal(t, "GET", e.Method)
		assert.Equal(t, int64(1500), e.DurationMs)
		assert.Empty(t, e.ErrorCode)
	})

	t.Run("standard error", func(t *testing.T) {
		e := NewEntry(ctx, infomaniak.Execution{
			Node: "core-resources", Resource: "Countries", Operation: "Display A Country",
			Err: stderrors.NewMissingPathParameterError("country_id", "path_country_id"),
		})
		assert.Equal(t, StatusError, e.Status)
		assert.Equal(t, "MISSING_PATH_PARAMETER", e.ErrorCode)
	})

	t.Run("plain error", func(t *testing.T) {
		e := NewEntry(context.Background(), infomaniak.Execution{Err: assert.AnError})
		assert.Equal(t, StatusError, e.Status)
		assert.Empty(t, e.ErrorCode)
		assert.Equal(t, assert.AnError.Error(), e.ErrorMessage)
		assert.Zero(t, e.JobKey)
	})
}

func TestHook_SwallowsRecorderErrors(t *testing.T) {
	rec := &memoryRecorder{err: assert.AnError}
	hook := Hook(rec, logger.NewTestLogger(t))

	assert.NotPanics(t, func() {
		hook(context.Background(), infomaniak.Execution{Node: "meeting", Resource: "Rooms", Operation: "Create A Room"})
	})
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "meeting", rec.entries[0].Node)
}

func TestMulti_RecordsEverywhere(t *testing.T) {
	a, b := &memoryRecorder{}, &memoryRecorder{err: assert.AnError}
	err := Multi{a, b}.Record(context.Background(), Entry{ID: "x"})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Len(t, a.entries, 1)
	assert.Len(t, b.entries, 1)
}

func TestPostgresRecorder_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	entry := Entry{
		ID: "id-1", JobKey: 9, Node: "public-cloud", Resource: "Projects", Operation: "List Projects",
		Method: "GET", Path: "/1/public_clouds/3/projects", ItemCount: 4, Status: StatusSuccess,
		DurationMs: 12, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(`INSERT INTO "infomaniak_request_log"`).
		WithArgs("id-1", nil, int64(9), "public-cloud", "Projects", "List Projects",
			"GET", "/1/public_clouds/3/projects", 4, StatusSuccess, nil, nil, int64(12), entry.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewPostgresRecorder(db, "").Record(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecorder_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO "audit_log"`).WillReturnError(assert.AnError)

	err = NewPostgresRecorder(db, "audit_log").Record(context.Background(), Entry{ID: "id-2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func newTestES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchRecorder_Record(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody map[string]interface{}

	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	err := NewElasticsearchRecorder(client, "").Record(context.Background(), Entry{
		ID: "abc", Node: "ai-tools", Resource: "Models", Operation: "List Models", Status: StatusSuccess,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.True(t, strings.HasPrefix(gotPath, "/infomaniak-requests/_doc/abc"))
	assert.Equal(t, "ai-tools", gotBody["node"])
}

func TestElasticsearchRecorder_ErrorStatus(t *testing.T) {
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"mapper_parsing_exception"}`))
	})

	err := NewElasticsearchRecorder(client, "requests").Record(context.Background(), Entry{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "job_requests"`)).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db, "job_requests"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_QuotesTableName(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	table := `log"; DROP TABLE users; --`
	quoted := `"log""; DROP TABLE users; --"`
	want := strings.NewReplacer(
		"{{table}}", quoted,
		"{{index}}", `"idx_log""; DROP TABLE users; --_node_created"`,
	).Replace(schema)
	assert.NotContains(t, want, "{{")
	assert.Contains(t, want, "CREATE TABLE IF NOT EXISTS "+quoted+" (")

	mock.ExpectExec(want).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db, table))
	assert.NoError(t, mock.ExpectationsWereMet())
}
