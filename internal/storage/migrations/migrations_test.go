package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsOrdered(t *testing.T) {
	pg, err := sqlFiles(PostgresFS, "postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_users.sql", "002_natal_charts.sql", "003_daily_gcodes.sql", "004_job_progress.sql"}, pg)

	ch, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_score_history.sql"}, ch)
}

func TestClickhouseMigrationsSplit(t *testing.T) {
	files, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)

	for _, file := range files {
		data, err := fs.ReadFile(ClickhouseFS, "clickhouse/"+file)
		require.NoError(t, err)

		stmts, err := splitStatements(string(data))
		require.NoError(t, err, file)
		require.NotEmpty(t, stmts, file)
		for _, s := range stmts {
			assert.False(t, strings.HasPrefix(s, "--"), "comment leaked into %q", s)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	stmts, err := splitStatements(`
-- leading comment
CREATE TABLE a (x String DEFAULT 'it''s');
INSERT INTO a VALUES ('b');

`)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"CREATE TABLE a (x String DEFAULT 'it''s')",
		"INSERT INTO a VALUES ('b')",
	}, stmts)

	_, err = splitStatements(`INSERT INTO a VALUES ('x;y');`)
	assert.Error(t, err)
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/gcode")
	require.NoError(t, err)
	assert.Equal(t, "gcode", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "003_daily_gcodes", version("003_daily_gcodes.sql"))
}
