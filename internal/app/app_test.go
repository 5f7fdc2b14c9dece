package app

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mbedpio/internal/inspect"
	"github.com/vk/mbedpio/internal/regions"
	"github.com/vk/mbedpio/internal/testutil"
)

// setupApp creates an App over the fixture framework, logging into a
// buffer.
func setupApp(t *testing.T, target string) (*App, *testutil.SafeBuffer) {
	t.Helper()

	fw := testutil.Framework(t)
	cfg, err := NewConfig(Config{
		FrameworkDir: fw,
		ProjectDir:   t.TempDir(),
		BuildDir:     filepath.Join(t.TempDir(), "build"),
		Target:       target,
		Profile:      "develop",
		LogLevel:     "debug",
	})
	require.NoError(t, err)

	logs := &testutil.SafeBuffer{}
	a := NewApp(logs, cfg)
	a.Extractor().Inspector = &inspect.Native{Now: func() time.Time { return time.Unix(1700000000, 0) }}

	t.Cleanup(func() {
		if os.Getenv("MBEDPIO_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, logs
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	valid := Config{FrameworkDir: "/fw", BuildDir: "/build", Target: "K64F"}
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "no framework", mutate: func(c *Config) { c.FrameworkDir = "" }, wantErr: "FrameworkDir"},
		{name: "no build dir", mutate: func(c *Config) { c.BuildDir = "" }, wantErr: "BuildDir"},
		{name: "no target", mutate: func(c *Config) { c.Target = "" }, wantErr: "Target"},
		{name: "bad profile", mutate: func(c *Config) { c.Profile = "fast" }, wantErr: `unknown build profile "fast"`},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: `unknown log format "xml"`},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := valid
			tc.mutate(&c)
			got, err := NewConfig(c)
			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c, *got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"msg":"shown"`)
}

func TestRun(t *testing.T) {
	t.Parallel()

	a, logs := setupApp(t, "K64F")
	cfg, env, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Same(t, cfg, a.Configuration())
	assert.Equal(t, "K64F", cfg.Target)
	assert.FileExists(t, env.ResponseFile)
	assert.Contains(t, env.CCFlags, "-includembed_config.h")
	assert.True(t, a.NeedsMerging())
	assert.False(t, a.HasTargetHook())
	assert.Contains(t, logs.String(), "Build configuration extracted.")
}

func TestStepsBeforeExtract(t *testing.T) {
	t.Parallel()

	a, _ := setupApp(t, "K64F")
	_, err := a.HostEnv(context.Background())
	assert.ErrorIs(t, err, ErrNotExtracted)
	_, err = a.MergeApps(context.Background(), "app.bin", "fw.bin")
	assert.ErrorIs(t, err, ErrNotExtracted)
	assert.ErrorIs(t, a.ApplyHook(context.Background(), "fw.elf", "fw.hex"), ErrNotExtracted)
	assert.False(t, a.NeedsMerging())
}

func TestFinalizeMergesRegions(t *testing.T) {
	t.Parallel()

	a, _ := setupApp(t, "K64F")
	_, err := a.Extract(context.Background())
	require.NoError(t, err)

	build := a.config.BuildDir
	require.NoError(t, os.MkdirAll(build, 0o755))
	app := filepath.Join(build, "app.bin")
	require.NoError(t, os.WriteFile(app, bytes.Repeat([]byte{0x11}, 90), 0o644))
	firmware := filepath.Join(build, "firmware.bin")

	require.NoError(t, a.Finalize(context.Background(), filepath.Join(build, "firmware.elf"), app, firmware))

	got, err := os.ReadFile(firmware)
	require.NoError(t, err)
	require.Len(t, got, 100)
	assert.Equal(t, bytes.Repeat([]byte{regions.Padding}, 6), got[90:96])
	assert.Equal(t, []byte("boot"), got[96:])
	assert.FileExists(t, filepath.Join(build, "firmware_K64F_update.bin"))
}

func TestFinalizeRunsHook(t *testing.T) {
	t.Parallel()

	a, _ := setupApp(t, "NRF51_DK")
	_, err := a.Extract(context.Background())
	require.NoError(t, err)
	require.True(t, a.HasTargetHook())
	require.False(t, a.NeedsMerging())

	build := a.config.BuildDir
	require.NoError(t, os.MkdirAll(build, 0o755))
	app := filepath.Join(build, "firmware.bin")
	require.NoError(t, os.WriteFile(app, bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 16), 0o644))

	require.NoError(t, a.Finalize(context.Background(), filepath.Join(build, "firmware.elf"), app, app))

	img, err := regions.LoadFile(filepath.Join(build, "firmware.hex"), 0)
	require.NoError(t, err)
	data := img.Bytes(regions.Padding)
	var sum uint32
	for i := 0; i < 8; i++ {
		sum += binary.LittleEndian.Uint32(data[i*4:])
	}
	assert.Zero(t, sum)
}

func TestNewConfigCanonicalizesProfile(t *testing.T) {
	t.Parallel()

	got, err := NewConfig(Config{FrameworkDir: "/fw", BuildDir: "/build", Target: "K64F", Profile: "Release"})
	require.NoError(t, err)
	assert.Equal(t, "release", got.Profile)
}

func TestNewAppPreprocessor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		cpp     string
		gdb     string
		wantCPP string
	}{
		{name: "derived from gdb", gdb: "arm-none-eabi-gdb", wantCPP: "arm-none-eabi-cpp"},
		{name: "explicit cpp wins", cpp: "clang-cpp", gdb: "arm-none-eabi-gdb", wantCPP: "clang-cpp"},
		{name: "neither set"},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := NewConfig(Config{FrameworkDir: "/fw", BuildDir: "/build", Target: "K64F", CPP: tc.cpp, GDB: tc.gdb})
			require.NoError(t, err)

			a := NewApp(&bytes.Buffer{}, cfg)
			if tc.wantCPP == "" {
				assert.Nil(t, a.Extractor().Preprocessor)
				return
			}
			require.NotNil(t, a.Extractor().Preprocessor)
			assert.Equal(t, tc.wantCPP, a.Extractor().Preprocessor.CPP)
		})
	}
}
