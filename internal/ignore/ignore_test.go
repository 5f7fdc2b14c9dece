package ignore

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mbedpio/internal/ctxlog"
)

func TestParseStripsFrameworkPrefixes(t *testing.T) {
	m, err := Parse(strings.NewReader(`
# comment
mbed-os/features/cellular/*
framework-mbed/connectivity/lorawan

storage/blockdevice/COMPONENT_SD/*
`))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"features/cellular/*",
		"connectivity/lorawan",
		"storage/blockdevice/COMPONENT_SD/*",
	}, m.Patterns())
}

func TestIgnored(t *testing.T) {
	m, err := New([]string{"features/cellular/*", "connectivity/lorawan"})
	require.NoError(t, err)

	testCases := []struct {
		path    string
		ignored bool
	}{
		{"features/cellular/framework/API.cpp", true},
		{"features/cellular", false},
		{"connectivity/lorawan", true},
		{"connectivity/lorawan/system/LoRaWANTimer.cpp", true},
		{"connectivity/netsocket/Socket.cpp", false},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			got, err := m.Ignored(tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.ignored, got)
		})
	}
}

func TestNilMatcherIgnoresNothing(t *testing.T) {
	var m *Matcher
	got, err := m.Ignored("anything")
	require.NoError(t, err)
	assert.False(t, got)
	assert.True(t, m.Empty())
}

func TestLoadMissingFileWarns(t *testing.T) {
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	m, err := Load(ctx, filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("rtos/*\n"), 0644))

	m, err := Load(context.Background(), path)
	require.NoError(t, err)

	got, err := m.Ignored("rtos/source/ThisThread.cpp")
	require.NoError(t, err)
	assert.True(t, got)
}
