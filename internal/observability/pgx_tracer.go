package observability

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

type queryStartKey struct{}

type queryStart struct {
	at        time.Time
	operation string
}

// QueryTracer records pgx query latency and errors under the "postgres"
// database label. The operation label is the leading SQL keyword.
type QueryTracer struct {
	now func() time.Time
}

var _ pgx.QueryTracer = (*QueryTracer)(nil)

// NewQueryTracer creates a tracer for postgres.PoolOptions.
func NewQueryTracer() *QueryTracer {
	return &QueryTracer{now: time.Now}
}

func (t *QueryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: t.now(), operation: queryOperation(data.SQL)})
}

func (t *QueryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	RecordDBQuery("postgres", start.operation, t.now().Sub(start.at).Seconds(), data.Err)
}

// queryOperation returns the lowercased first keyword of sql, or "other".
func queryOperation(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "other"
	}
	switch op := strings.ToLower(fields[0]); op {
	case "select", "insert", "update", "delete", "with", "create", "alter", "begin", "commit", "rollback":
		return op
	default:
		return "other"
	}
}
