//go:build integration

package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
)

func TestRedisNotifier_AppendsToStream(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	n, err := NewRedisNotifier(ctx, url, "trap-alerts", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = n.Close() })

	require.NoError(t, n.Notify(ctx, "luna@lgu.example", testAlert()))

	entries, err := n.client.XRange(ctx, "trap-alerts", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "luna@lgu.example", entries[0].Values["contact"])

	var got escalation.Alert
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["payload"].(string)), &got))
	assert.Equal(t, testAlert().ID, got.ID)
}
