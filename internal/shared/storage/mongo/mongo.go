package mongo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"study-assistant/internal/shared/telemetry"
)

var (
	clientMu sync.Mutex
	client   *mongo.Client
)

// Connect returns the process-wide MongoDB client, dialing and pinging on first use.
// A failed attempt is not cached.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientMu.Lock()
	defer clientMu.Unlock()
	if client != nil {
		return client, nil
	}
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("MONGODB_URI is empty")
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := c.Ping(dialCtx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	telemetry.Info("mongo.connected", nil)
	client = c
	return client, nil
}

// Database opens the named database on the shared client.
func Database(ctx context.Context, uri, name string) (*mongo.Database, error) {
	c, err := Connect(ctx, uri)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = "study_assistant"
	}
	return c.Database(name), nil
}

// Close disconnects the shared client if one was opened.
func Close(ctx context.Context) error {
	clientMu.Lock()
	defer clientMu.Unlock()
	if client == nil {
		return nil
	}
	err := client.Disconnect(ctx)
	client = nil
	return err
}
