//go:build linux

package watcher

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinuxBackend(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	opts := Options{}
	opts.setDefaults()

	b, err := newLinuxBackend(logger, opts)
	require.NoError(t, err)
	require.NotNil(t, b)

	err = b.Stop()
	assert.NoError(t, err)
}

func TestLinuxBackend_Channels(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	opts := Options{}
	opts.setDefaults()

	b, err := newLinuxBackend(logger, opts)
	require.NoError(t, err)
	defer b.Stop()

	assert.NotNil(t, b.Events(), "events channel should be wired")
	assert.NotNil(t, b.Errors(), "errors channel should be wired")
}
