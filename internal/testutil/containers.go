package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer runs req, terminates it on test cleanup and returns host:port of its
// single exposed port
func startContainer(t *testing.T, req testcontainers.ContainerRequest) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start %s container: %v", req.Image, err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("Failed to terminate %s container: %v", req.Image, err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get %s endpoint: %v", req.Image, err)
	}
	return endpoint
}

// StartRedis starts a Redis container and returns its address
func StartRedis(t *testing.T) string {
	t.Helper()
	return startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	})
}

// StartRabbitMQ starts a RabbitMQ broker and returns an AMQP URL for it
func StartRabbitMQ(t *testing.T) string {
	t.Helper()
	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "rabbitmq:3.13-alpine",
		ExposedPorts: []string{"5672/tcp"},
		Env: map[string]string{
			"RABBITMQ_DEFAULT_USER": "assessment",
			"RABBITMQ_DEFAULT_PASS": "assessment",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Server startup complete"),
			wait.ForListeningPort("5672/tcp"),
		).WithStartupTimeout(120 * time.Second),
	})
	return fmt.Sprintf("amqp://assessment:assessment@%s/", addr)
}
