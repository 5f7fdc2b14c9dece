package regions

import (
	"context"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"sort"

	"github.com/vk/mbedpio/internal/ctxlog"
)

// Hook post-processes a merged firmware image in place. elfPath is the
// linked application, binPath the image to patch.
type Hook func(ctx context.Context, list []Region, elfPath, binPath string) error

var hooks = map[string]Hook{
	"lpc_checksum":  lpcChecksum,
	"vendor_header": vendorHeader,
}

// LookupHook returns the registered hook called name.
func LookupHook(name string) (Hook, error) {
	h, ok := hooks[name]
	if !ok {
		return nil, fmt.Errorf("unknown post-binary hook %q (known: %v)", name, HookNames())
	}
	return h, nil
}

// HookNames lists the registered hooks, sorted.
func HookNames() []string {
	names := make([]string, 0, len(hooks))
	for n := range hooks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

const (
	lpcVectorWords    = 7
	lpcChecksumOffset = 0x1C
)

// lpcChecksum stores the two's complement of the first seven vector table
// words in the eighth, which NXP boot ROMs require for a valid image.
func lpcChecksum(ctx context.Context, _ []Region, _, binPath string) error {
	img, err := LoadFile(binPath, 0)
	if err != nil {
		return err
	}
	base := img.MinAddr()
	vectors := make([]byte, lpcVectorWords*4)
	img.ReadAt(vectors, base)

	var sum uint32
	for i := 0; i < lpcVectorWords; i++ {
		sum += binary.LittleEndian.Uint32(vectors[i*4:])
	}
	patch := make([]byte, 4)
	binary.LittleEndian.PutUint32(patch, -sum)
	if err := img.WriteAt(patch, base+lpcChecksumOffset); err != nil {
		return err
	}

	ctxlog.FromContext(ctx).Debug("Patched vector table checksum.", "file", binPath, "checksum", fmt.Sprintf("0x%08x", -sum))
	return WriteFile(binPath, img)
}

// VendorHeaderMagic opens the header written by the vendor_header hook.
var VendorHeaderMagic = [4]byte{'M', 'B', 'H', 'D'}

// VendorHeaderSize is the size of the vendor_header header in bytes.
const VendorHeaderSize = 16

// vendorHeader prepends magic, payload length, payload CRC32 and the ELF
// entry point, all little endian.
func vendorHeader(ctx context.Context, _ []Region, elfPath, binPath string) error {
	f, err := elf.Open(elfPath)
	if err != nil {
		return fmt.Errorf("failed to read entry point: %w", err)
	}
	entry := f.Entry
	f.Close()

	img, err := LoadFile(binPath, 0)
	if err != nil {
		return err
	}
	payload := img.Bytes(Padding)
	base := img.MinAddr()
	if base < VendorHeaderSize && isHex(binPath) {
		return fmt.Errorf("no room for a %d byte header below 0x%x", VendorHeaderSize, base)
	}

	header := make([]byte, VendorHeaderSize)
	copy(header, VendorHeaderMagic[:])
	binary.LittleEndian.PutUint32(header[4:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[8:], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(header[12:], uint32(entry))

	out := &Image{}
	if isHex(binPath) {
		if err := out.Put(base-VendorHeaderSize, header); err != nil {
			return err
		}
		if err := out.Merge(img); err != nil {
			return err
		}
	} else {
		if err := out.Put(0, header); err != nil {
			return err
		}
		if err := out.Put(VendorHeaderSize, payload); err != nil {
			return err
		}
	}

	ctxlog.FromContext(ctx).Debug("Prepended vendor header.", "file", binPath, "entry", fmt.Sprintf("0x%x", entry))
	return WriteFile(binPath, out)
}
