package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const DefaultTable = "infomaniak_request_log"

//go:embed schema.sql
var schema string

// Migrate creates the request log table and its index when missing.
func Migrate(ctx context.Context, db *sql.DB, table string) error {
	if table == "" {
		table = DefaultTable
	}
	ddl := strings.NewReplacer(
		"{{table}}", pq.QuoteIdentifier(table),
		"{{index}}", pq.QuoteIdentifier("idx_"+table+"_node_created"),
	).Replace(schema)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to migrate audit table %s: %w", table, err)
	}
	return nil
}

// PostgresRecorder inserts entries into the request log table.
type PostgresRecorder struct {
	db     *sql.DB
	insert string
}

func NewPostgresRecorder(db *sql.DB, table string) *PostgresRecorder {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresRecorder{
		db: db,
		insert: fmt.Sprintf(`INSERT INTO %s
			(id, correlation_id, job_key, node, resource, operation, method, path,
			 item_count, status, error_code, error_message, duration_ms, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			pq.QuoteIdentifier(table)),
	}
}

func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, r.insert,
		e.ID, nullString(e.CorrelationID), e.JobKey, e.Node, e.Resource, e.Operation,
		nullString(e.Method), nullString(e.Path), e.ItemCount, e.Status,
		nullString(e.ErrorCode), nullString(e.ErrorMessage), e.DurationMs, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
