package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/briefer"
	"github.com/helixml/briefer/internal/config"
)

func TestIsSQLite(t *testing.T) {
	assert.True(t, isSQLite("sqlite:///briefer.db"))
	assert.True(t, isSQLite("sqlite:briefer.db"))
	assert.False(t, isSQLite("postgresql://user@db.example/briefer"))
}

func TestClientOptions_SQLiteWithoutAIKey(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewAppConfigWithOptions(config.WithDBURL("sqlite:///" + dir + "/briefer.db"))

	opts, err := clientOptions(cfg, nil)
	require.NoError(t, err)

	client, err := briefer.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.False(t, client.QueueEnabled())
	assert.NoError(t, client.Ping(context.Background()))
}

func TestClientOptions_HTTPCacheDir(t *testing.T) {
	cfg := config.NewAppConfigWithOptions(
		config.WithDBURL("sqlite:///:memory:"),
		config.WithAIEndpoint(config.NewEndpointWithOptions(
			config.WithAPIKey("sk-test"),
			config.WithHTTPCacheDir(t.TempDir()),
		)),
	)

	opts, err := textOptions(cfg)
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := versionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "briefer version dev")
}

func TestApplyServeOverrides(t *testing.T) {
	cfg := applyServeOverrides(config.NewAppConfig(), "127.0.0.1", 9090)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())

	unchanged := applyServeOverrides(config.NewAppConfig(), "", 0)
	assert.Equal(t, config.NewAppConfig().Addr(), unchanged.Addr())
}
