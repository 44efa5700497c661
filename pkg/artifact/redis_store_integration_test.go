//go:build integration

package artifact

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a real Redis for integration testing.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		redisClient.Close()
		container.Terminate(ctx)
	})

	return redisClient
}

func TestRedisStore_Integration(t *testing.T) {
	client := setupRedisContainer(t)
	c := New(NewRedisStore(client), DefaultConfig())
	ctx := context.Background()
	key := KeyFor("/alice")
	gen := &countingGenerator{data: pngBytes}

	if _, err := c.RenderAndStore(ctx, key, gen.generate, 2*time.Second); err != nil {
		t.Fatalf("RenderAndStore failed: %v", err)
	}

	res, err := c.FetchOrRenderTransient(ctx, key, gen.generate)
	if err != nil {
		t.Fatalf("FetchOrRenderTransient failed: %v", err)
	}
	if res.Source != SourceCache || !bytes.Equal(res.Body, pngBytes) {
		t.Errorf("expected cached bytes, got %s %q", res.Source, res.Body)
	}

	time.Sleep(3 * time.Second)

	res, err = c.FetchOrRenderTransient(ctx, key, gen.generate)
	if err != nil {
		t.Fatalf("FetchOrRenderTransient after expiry failed: %v", err)
	}
	if res.Source != SourceGenerated {
		t.Errorf("Source after expiry = %s, want %s", res.Source, SourceGenerated)
	}
	if gen.count() != 2 {
		t.Errorf("generator called %d times, want 2", gen.count())
	}
}
