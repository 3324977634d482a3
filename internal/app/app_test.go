package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundayezeilo/usermgmt/hashid"
	"github.com/sundayezeilo/usermgmt/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCodec(t *testing.T) {
	codec, err := NewCodec(config.HashConfig{Salt: "test-salt"})
	require.NoError(t, err)

	token, err := codec.Encode(1)
	require.NoError(t, err)
	assert.Len(t, token, hashid.DefaultMinLength)

	id, ok := codec.Decode(token)
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)
}

func TestNewCodec_EmptySalt(t *testing.T) {
	_, err := NewCodec(config.HashConfig{})
	require.ErrorIs(t, err, hashid.ErrEmptySalt)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.in))
		})
	}
}

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(ctx context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingWithRetry(t *testing.T) {
	t.Run("succeeds after transient failures", func(t *testing.T) {
		p := &flakyPinger{failures: 2}
		err := pingWithRetry(context.Background(), p, 10*time.Second, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, 3, p.calls)
	})

	t.Run("gives up after timeout", func(t *testing.T) {
		p := &flakyPinger{failures: 1 << 30}
		err := pingWithRetry(context.Background(), p, 300*time.Millisecond, discardLogger())
		require.Error(t, err)
		assert.GreaterOrEqual(t, p.calls, 1)
	})

	t.Run("stops on context cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := &flakyPinger{failures: 1 << 30}
		err := pingWithRetry(ctx, p, 10*time.Second, discardLogger())
		require.Error(t, err)
	})
}
