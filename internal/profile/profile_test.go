package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mbedpio/internal/config"
	"github.com/vk/mbedpio/internal/hcl"
)

func TestParseName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in      string
		want    Name
		wantErr bool
	}{
		{in: "debug", want: Debug},
		{in: "Release", want: Release},
		{in: "develop", want: Develop},
		{in: "small", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseName(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFromDefines(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Develop, FromDefines(nil))
	assert.Equal(t, Debug, FromDefines([]string{"FOO", "MBED_BUILD_PROFILE_DEBUG"}))
	assert.Equal(t, Release, FromDefines([]string{"-DMBED_BUILD_PROFILE_RELEASE=1"}))
	assert.Equal(t, Release, FromDefines([]string{"MBED_BUILD_PROFILE_DEBUG", "MBED_BUILD_PROFILE_RELEASE"}))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	fw := t.TempDir()
	dir := filepath.Join(fw, Dir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "develop.hcl"), []byte(`
toolchain "GCC_ARM" {
  common = ["-Wall", "-Os"]
  ld     = ["-Wl,--gc-sections"]
}
`), 0o644))

	p, err := Load(context.Background(), hcl.NewLoader(), fw, Develop)
	require.NoError(t, err)
	assert.Equal(t, "develop", p.Name)

	f, err := Flags(p, "GCC", "GCC_ARM")
	require.NoError(t, err)
	assert.Equal(t, []string{"-Wall", "-Os"}, f.Common)

	_, err = Flags(&config.Profile{Name: "develop"}, "GCC_ARM")
	assert.ErrorContains(t, err, "no flags for toolchain GCC_ARM")

	_, err = Load(context.Background(), hcl.NewLoader(), fw, Release)
	assert.ErrorContains(t, err, `build profile "release" not found`)
}
