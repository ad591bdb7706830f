package couchdb

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a CouchDB container and returns a connected client.
// Returns a cleanup function that must be called when done.
func setupTestDB(t *testing.T) (*Client, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "couchdb:3.3",
		ExposedPorts: []string{"5984/tcp"},
		Env: map[string]string{
			"COUCHDB_USER":     "admin",
			"COUCHDB_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForHTTP("/_up").WithPort("5984/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start couchdb container")

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5984")
	require.NoError(t, err)

	url := fmt.Sprintf("http://admin:testpass@%s:%s", host, port.Port())

	client, err := NewClient(ctx, url)
	require.NoError(t, err, "failed to connect to couchdb")

	cleanup := func() {
		client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return client, cleanup
}

var prefixSeq atomic.Int64

// newTestStore creates fresh databases under a unique prefix.
func newTestStore(t *testing.T, client *Client, opts ...Option) *Store {
	t.Helper()

	ctx := context.Background()
	prefix := fmt.Sprintf("pop_test_%d_", prefixSeq.Add(1))

	require.NoError(t, EnsureDatabases(ctx, client, prefix))
	t.Cleanup(func() {
		if err := DropDatabases(ctx, client, prefix); err != nil {
			t.Logf("failed to drop databases: %v", err)
		}
	})

	return NewStore(client, prefix, opts...)
}
