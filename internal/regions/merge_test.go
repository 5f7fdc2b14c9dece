package regions

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mbedpio/internal/builderr"
)

func fill(n int, b byte) []byte { return bytes.Repeat([]byte{b}, n) }

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func u32(v uint32) *uint32 { return &v }

func TestMergeApps(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	app := writeFile(t, filepath.Join(dir, "app.bin"), fill(90, 0x11))
	boot := writeFile(t, filepath.Join(dir, "boot.bin"), fill(50, 0x22))
	layout := []Region{
		{Name: "application", Offset: 0, Length: 100, Active: true, Filename: "placeholder.bin"},
		{Name: "bootloader", Offset: 100, Length: 50, Filename: boot},
	}

	t.Run("merged and update images", func(t *testing.T) {
		out := t.TempDir()
		firmware := filepath.Join(out, "firmware.bin")

		res, err := MergeApps(context.Background(), layout, app, firmware, out, MergeOptions{Target: "K64F"})
		require.NoError(t, err)
		assert.Equal(t, firmware, res.Firmware)
		assert.Equal(t, filepath.Join(out, "firmware_K64F_update.bin"), res.Update)

		got, err := os.ReadFile(firmware)
		require.NoError(t, err)
		require.Len(t, got, 150)
		assert.Equal(t, fill(90, 0x11), got[:90])
		assert.Equal(t, fill(10, Padding), got[90:100])
		assert.Equal(t, fill(50, 0x22), got[100:])

		update, err := os.ReadFile(res.Update)
		require.NoError(t, err)
		assert.Equal(t, fill(90, 0x11), update)
	})

	t.Run("size restriction is fatal", func(t *testing.T) {
		out := t.TempDir()
		firmware := filepath.Join(out, "firmware.bin")

		_, err := MergeApps(context.Background(), layout, app, firmware, out, MergeOptions{Target: "K64F", RestrictSize: u32(140)})
		var le *builderr.LayoutError
		require.ErrorAs(t, err, &le)
		assert.ErrorIs(t, err, ErrTooLarge)
		assert.Equal(t, "K64F", le.Target)

		assert.NoFileExists(t, firmware)
		assert.NoFileExists(t, filepath.Join(out, "firmware_K64F_update.bin"))
	})

	t.Run("no update regions", func(t *testing.T) {
		out := t.TempDir()
		firmware := filepath.Join(out, "firmware.bin")
		noUpdate := []Region{
			{Name: "main", Offset: 0, Length: 100, Active: true},
			{Name: "bootloader", Offset: 100, Length: 50, Filename: boot},
		}

		res, err := MergeApps(context.Background(), noUpdate, app, firmware, out, MergeOptions{Target: "K64F"})
		require.NoError(t, err)
		assert.Empty(t, res.Update)
		assert.FileExists(t, firmware)
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	small := writeFile(t, filepath.Join(dir, "small.bin"), fill(8, 0xAA))
	big := writeFile(t, filepath.Join(dir, "big.bin"), fill(32, 0xBB))
	txt := writeFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))

	testCases := []struct {
		name    string
		regions []Region
		opts    MergeOptions
		wantErr error
		span    uint64
	}{
		{
			name:    "active region without file",
			regions: []Region{{Name: "application", Length: 16, Active: true}},
			wantErr: ErrNoContent,
		},
		{
			name: "declared regions overlap",
			regions: []Region{
				{Name: "application", Offset: 0, Length: 100, Active: true, Filename: small},
				{Name: "bootloader", Offset: 50, Length: 100, Filename: big},
			},
			wantErr: ErrRegionOverlap,
		},
		{
			name: "region nested in a larger one",
			regions: []Region{
				{Name: "flash", Offset: 0, Length: 0x100},
				{Name: "config", Offset: 0x200, Length: 0x10},
				{Name: "nested", Offset: 0x80, Length: 0x10},
			},
			wantErr: ErrRegionOverlap,
		},
		{
			name: "content overlap across adjacent regions",
			regions: []Region{
				{Name: "a", Offset: 0, Length: 16, Filename: big},
				{Name: "b", Offset: 16, Length: 16, Filename: small},
			},
			wantErr: ErrOverlap,
		},
		{
			name: "same file merged once",
			regions: []Region{
				{Name: "a", Offset: 0, Length: 8, Filename: small},
				{Name: "b", Offset: 8, Length: 8, Filename: small},
			},
			span: 8,
		},
		{
			name: "zero length regions never overlap",
			regions: []Region{
				{Name: "marker", Offset: 4, Length: 0},
				{Name: "a", Offset: 0, Length: 8, Filename: small},
			},
			span: 8,
		},
		{
			name:    "oversized content tolerated without restriction",
			regions: []Region{{Name: "a", Offset: 0, Length: 16, Active: true, Filename: big}},
			span:    32,
		},
		{
			name:    "oversized content fatal with restriction",
			regions: []Region{{Name: "a", Offset: 0, Length: 16, Active: true, Filename: big}},
			opts:    MergeOptions{RestrictSize: u32(1024)},
			wantErr: ErrDoesNotFit,
		},
		{
			name:    "inactive only list unchecked by default",
			regions: []Region{{Name: "boot", Offset: 0, Length: 16, Filename: big}},
			opts:    MergeOptions{RestrictSize: u32(16)},
			span:    32,
		},
		{
			name:    "inactive only list restricted on request",
			regions: []Region{{Name: "boot", Offset: 0, Length: 64, Filename: big}},
			opts:    MergeOptions{RestrictSize: u32(16), RestrictInactiveOnly: true},
			wantErr: ErrTooLarge,
		},
		{
			name:    "inactive only fit check on request",
			regions: []Region{{Name: "boot", Offset: 0, Length: 16, Filename: big}},
			opts:    MergeOptions{RestrictSize: u32(1024), RestrictInactiveOnly: true},
			wantErr: ErrDoesNotFit,
		},
		{
			name:    "empty regions ignored",
			regions: []Region{{Name: "config", Offset: 0x100, Length: 16}},
			span:    0,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			img, err := Build(context.Background(), tc.regions, tc.opts)
			if tc.wantErr != nil {
				var le *builderr.LayoutError
				require.ErrorAs(t, err, &le)
				assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.span, img.Span())
		})
	}

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()
		_, err := Build(context.Background(), []Region{{Name: "x", Length: 4, Filename: txt}}, MergeOptions{})
		assert.ErrorContains(t, err, "unsupported file format")
	})
}

func TestMergeHexRegion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	boot := &Image{}
	require.NoError(t, boot.Put(0x20, fill(16, 0x5A)))
	var buf bytes.Buffer
	require.NoError(t, WriteHex(&buf, boot))
	bootHex := writeFile(t, filepath.Join(dir, "boot.hex"), buf.Bytes())
	app := writeFile(t, filepath.Join(dir, "app.bin"), fill(16, 0x01))

	dest := filepath.Join(dir, "out", "merged.hex")
	layout := []Region{
		{Name: "application", Offset: 0, Length: 0x20, Active: true, Filename: app},
		{Name: "bootloader", Offset: 0x20, Length: 0x20, Filename: bootHex},
	}
	require.NoError(t, Merge(context.Background(), layout, dest, MergeOptions{}))

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	img, err := ReadHex(f)
	require.NoError(t, err)

	// Hex output keeps the gap instead of padding it.
	assert.Equal(t, 32, populated(img))
	assert.Equal(t, uint64(0x30), img.Span())
}

func TestUpdateFilename(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		firmware, target, ext string
		want                  string
	}{
		{"/build/firmware.hex", "K64F", "", "firmware_K64F_update.bin"},
		{"/build/firmware.bin", "K64F", "", "firmware_K64F_update.bin"},
		{"/build/firmware.bin", "NRF51_DK", "hex", "firmware_NRF51_DK_update.hex"},
		{"fw", "K64F", ".bin", "fw_K64F_update.bin"},
	}
	for _, tc := range testCases {
		tc := tc
		assert.Equal(t, tc.want, UpdateFilename(tc.firmware, tc.target, tc.ext))
	}
}

func TestMergeAppsHexFirmwareGetsBinUpdate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	app := writeFile(t, filepath.Join(dir, "app.bin"), fill(16, 0x11))
	boot := writeFile(t, filepath.Join(dir, "boot.bin"), fill(16, 0x22))
	layout := []Region{
		{Name: "application", Offset: 0, Length: 16, Active: true},
		{Name: "bootloader", Offset: 16, Length: 16, Filename: boot},
	}
	firmware := filepath.Join(dir, "out", "firmware.hex")

	res, err := MergeApps(context.Background(), layout, app, firmware, dir, MergeOptions{Target: "K64F"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "firmware_K64F_update.bin"), res.Update)

	update, err := os.ReadFile(res.Update)
	require.NoError(t, err)
	assert.Equal(t, fill(16, 0x11), update, "update image is a raw binary")

	merged, err := LoadFile(firmware, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(32), merged.Span())
}

func TestMergeAppsRejectsOverlappingRegions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	app := writeFile(t, filepath.Join(dir, "app.bin"), fill(40, 0x11))
	boot := writeFile(t, filepath.Join(dir, "boot.bin"), fill(10, 0x22))
	layout := []Region{
		{Name: "application", Offset: 0, Length: 100, Active: true},
		{Name: "bootloader", Offset: 50, Length: 100, Filename: boot},
	}
	out := t.TempDir()
	firmware := filepath.Join(out, "fw.bin")

	_, err := MergeApps(context.Background(), layout, app, firmware, out, MergeOptions{Target: "X"})
	var le *builderr.LayoutError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, ErrRegionOverlap)
	assert.Equal(t, "bootloader", le.Region)
	assert.NoFileExists(t, firmware)
	assert.NoFileExists(t, filepath.Join(out, "fw_X_update.bin"))
}

func TestWithApplication(t *testing.T) {
	t.Parallel()
	in := []Region{{Name: "application", Active: true, Filename: "old.bin"}, {Name: "boot", Filename: "boot.bin"}}
	out := WithApplication(in, "new.bin")
	assert.Equal(t, "new.bin", out[0].Filename)
	assert.Equal(t, "boot.bin", out[1].Filename)
	assert.Equal(t, "old.bin", in[0].Filename)
	assert.Equal(t, []Region{out[0]}, UpdateRegions(out))
}
