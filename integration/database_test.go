//go:build database

package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const fixtureCSV = `timestamp,orders
2024-06-13T09:00:00Z,3
2024-06-14T10:00:00Z,5
2024-06-14T23:00:00Z,1
2024-06-15T08:00:00Z,2
`

// exerciseBackend runs the cache and run-tracking commands against the
// backend configured through the TALLY_* environment.
func exerciseBackend(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "orders.csv")
	require.NoError(t, os.WriteFile(input, []byte(fixtureCSV), 0o644))

	_, err := runTally(t, dir, "cache", "clear")
	require.NoError(t, err)

	_, err = runTally(t, dir, "runs", "clear")
	require.NoError(t, err)

	_, err = runTally(t, dir, "runs", "migrate")
	require.NoError(t, err)

	args := []string{"series", input, "-f", "orders", "-n", "2", "--now", "2024-06-15T12:00:00Z", "--output", "csv"}
	first, err := runTally(t, dir, args...)
	require.NoError(t, err)
	assert.Contains(t, first, "timestamp,orders")

	// Second build is served from the cache
	second, err := runTally(t, dir, args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	status, err := runTally(t, dir, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Entries: 1")

	status, err = runTally(t, dir, "runs", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Runs: 1")

	_, err = runTally(t, dir, "runs", "migrate", "--target-version", "0")
	require.NoError(t, err)
	_, err = runTally(t, dir, "runs", "migrate")
	require.NoError(t, err)
}

// TestTallyWithMySQL tests the tally CLI with a MySQL backend.
func TestTallyWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "tally",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/tally?parseTime=true", host, port.Port())

	t.Setenv("TALLY_CACHE_BACKEND", "mysql")
	t.Setenv("TALLY_CACHE_DB_CONNECT", connStr)
	t.Setenv("TALLY_RUN_BACKEND", "mysql")
	t.Setenv("TALLY_RUN_DB_CONNECT", connStr)

	exerciseBackend(t)
}

// TestTallyWithPostgres tests the tally CLI with a PostgreSQL backend.
func TestTallyWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	t.Setenv("TALLY_CACHE_BACKEND", "postgresql")
	t.Setenv("TALLY_CACHE_DB_CONNECT", connStr)
	t.Setenv("TALLY_RUN_BACKEND", "postgresql")
	t.Setenv("TALLY_RUN_DB_CONNECT", connStr)

	exerciseBackend(t)
}

// TestTallyWithClickHouseSource reads points from a ClickHouse query.
func TestTallyWithClickHouseSource(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "clickhouse/clickhouse-server:24.8",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"CLICKHOUSE_SKIP_USER_SETUP": "1",
		},
		WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	chC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = chC.Terminate(ctx) }()

	host, err := chC.Host(ctx)
	require.NoError(t, err)
	port, err := chC.MappedPort(ctx, "9000")
	require.NoError(t, err)

	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%s", host, port.Port())},
		Auth: clickhouse.Auth{Database: "default", Username: "default"},
	})
	defer func() { _ = db.Close() }()
	seedClickHouse(ctx, t, db)

	dir := t.TempDir()
	out, err := runTally(t, dir, "series",
		"--source-backend", "clickhouse",
		"--source-db-connect", fmt.Sprintf("clickhouse://default:@%s:%s/default", host, port.Port()),
		"--query", "SELECT ts AS timestamp, amount FROM orders ORDER BY ts",
		"-f", "amount", "-n", "1", "--now", "2024-06-15T12:00:00Z",
		"--output", "csv", "--cache-backend", "none",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "timestamp,amount")
	assert.Contains(t, out, ",7")
}

func seedClickHouse(ctx context.Context, t *testing.T, db *sql.DB) {
	t.Helper()
	require.Eventually(t, func() bool { return db.PingContext(ctx) == nil }, 30*time.Second, time.Second)

	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS orders (ts DateTime64(3, 'UTC'), amount Float64) ENGINE = MergeTree ORDER BY ts`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO orders VALUES ('2024-06-15 08:00:00', 4), ('2024-06-15 09:30:00', 3)`)
	require.NoError(t, err)
}
