package turso_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emiliopalmerini/modelcraft/internal/adapters/turso"
	"github.com/emiliopalmerini/modelcraft/internal/migrate"
)

// TestJournal_LibSQLServer runs the journal against a libsql-server container.
// Set MODELCRAFT_TEST_TURSO=1 to enable it.
func TestJournal_LibSQLServer(t *testing.T) {
	if os.Getenv("MODELCRAFT_TEST_TURSO") != "1" {
		t.Skip("MODELCRAFT_TEST_TURSO not set")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "ghcr.io/tursodatabase/libsql-server:latest",
			ExposedPorts: []string{"8080/tcp"},
			WaitingFor:   wait.ForHTTP("/health").WithPort("8080/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	port, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	db, err := turso.NewDB(turso.Options{URL: fmt.Sprintf("http://%s:%s", host, port.Port()), Ping: true})
	require.NoError(t, err)
	require.NoError(t, migrate.Apply(ctx, db))

	journal := turso.NewJournal(db)
	t.Cleanup(func() { _ = journal.Close() })

	require.NoError(t, journal.RecordTraining(ctx, trainingRecord("remote-1", base)))
	runs, err := journal.ListTrainingRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "remote-1", runs[0].ID)
}
