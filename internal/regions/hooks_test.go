package regions

import (
	"bytes"
	"context"
	"debug/elf"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeELF writes a bare ELF32 header carrying only an entry point.
func writeELF(t *testing.T, path string, entry uint32) string {
	t.Helper()
	hdr := elf.Header32{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_ARM),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     entry,
		Ehsize:    52,
		Phentsize: 32,
		Shentsize: 40,
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &hdr))
	return writeFile(t, path, buf.Bytes())
}

func TestLookupHook(t *testing.T) {
	t.Parallel()

	h, err := LookupHook("lpc_checksum")
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = LookupHook("nrf_magic")
	assert.ErrorContains(t, err, `unknown post-binary hook "nrf_magic"`)

	assert.Equal(t, []string{"lpc_checksum", "vendor_header"}, HookNames())
}

func TestLPCChecksum(t *testing.T) {
	t.Parallel()

	data := make([]byte, 64)
	for i := 0; i < 7; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(0x10000000+i*0x101))
	}
	path := writeFile(t, filepath.Join(t.TempDir(), "fw.bin"), data)

	hook, err := LookupHook("lpc_checksum")
	require.NoError(t, err)
	require.NoError(t, hook(context.Background(), nil, "", path))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, got, 64)

	var sum uint32
	for i := 0; i < 8; i++ {
		sum += binary.LittleEndian.Uint32(got[i*4:])
	}
	assert.Zero(t, sum)
	assert.Equal(t, data[32:], got[32:])
}

func TestVendorHeader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := []byte("firmware payload")
	bin := writeFile(t, filepath.Join(dir, "fw.bin"), payload)
	elfPath := writeELF(t, filepath.Join(dir, "fw.elf"), 0x1B0C1)

	hook, err := LookupHook("vendor_header")
	require.NoError(t, err)
	require.NoError(t, hook(context.Background(), nil, elfPath, bin))

	got, err := os.ReadFile(bin)
	require.NoError(t, err)
	require.Len(t, got, VendorHeaderSize+len(payload))
	assert.Equal(t, VendorHeaderMagic[:], got[:4])
	assert.Equal(t, uint32(len(payload)), binary.LittleEndian.Uint32(got[4:]))
	assert.Equal(t, crc32.ChecksumIEEE(payload), binary.LittleEndian.Uint32(got[8:]))
	assert.Equal(t, uint32(0x1B0C1), binary.LittleEndian.Uint32(got[12:]))
	assert.Equal(t, payload, got[VendorHeaderSize:])
}

func TestVendorHeaderErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	elfPath := writeELF(t, filepath.Join(dir, "fw.elf"), 0x100)

	img := &Image{}
	require.NoError(t, img.Put(0x4, []byte{1, 2, 3}))
	var buf bytes.Buffer
	require.NoError(t, WriteHex(&buf, img))
	lowHex := writeFile(t, filepath.Join(dir, "low.hex"), buf.Bytes())

	err := vendorHeader(context.Background(), nil, elfPath, lowHex)
	assert.ErrorContains(t, err, "no room")

	err = vendorHeader(context.Background(), nil, filepath.Join(dir, "missing.elf"), lowHex)
	assert.ErrorContains(t, err, "failed to read entry point")
}

func TestVendorHeaderHex(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	elfPath := writeELF(t, filepath.Join(dir, "fw.elf"), 0x1000)
	img := &Image{}
	require.NoError(t, img.Put(0x1000, []byte{0xDE, 0xAD}))
	var buf bytes.Buffer
	require.NoError(t, WriteHex(&buf, img))
	hexPath := writeFile(t, filepath.Join(dir, "fw.hex"), buf.Bytes())

	require.NoError(t, vendorHeader(context.Background(), nil, elfPath, hexPath))

	out, err := LoadFile(hexPath, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x1000-VendorHeaderSize), out.MinAddr())
	assert.Equal(t, uint64(VendorHeaderSize+2), out.Span())
}
