package regions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

// ErrOverlap reports content placed twice at the same address.
var ErrOverlap = errors.New("overlapping content")

// Image is sparse memory content kept as gohex data segments. The zero
// value is an empty image.
type Image struct {
	mem *gohex.Memory
}

func (img *Image) memory() *gohex.Memory {
	if img.mem == nil {
		img.mem = gohex.NewMemory()
	}
	return img.mem
}

func (img *Image) segments() []gohex.DataSegment {
	return img.memory().GetDataSegments()
}

func checkRange(addr uint32, n int) error {
	if uint64(addr)+uint64(n) > 1<<32 {
		return fmt.Errorf("content at 0x%x of %d bytes exceeds the address space", addr, n)
	}
	return nil
}

// Put places data at addr. Content may not overlap what is already there.
func (img *Image) Put(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := checkRange(addr, len(data)); err != nil {
		return err
	}
	if err := img.memory().AddBinary(addr, append([]byte(nil), data...)); err != nil {
		return fmt.Errorf("%w at 0x%x: %v", ErrOverlap, addr, err)
	}
	return nil
}

// Merge copies every segment of other into img.
func (img *Image) Merge(other *Image) error {
	for _, s := range other.segments() {
		if err := img.Put(s.Address, s.Data); err != nil {
			return err
		}
	}
	return nil
}

// Empty reports whether the image holds no content.
func (img *Image) Empty() bool { return len(img.segments()) == 0 }

func (img *Image) bounds() (lo, hi uint64) {
	for i, s := range img.segments() {
		start := uint64(s.Address)
		end := start + uint64(len(s.Data))
		if i == 0 || start < lo {
			lo = start
		}
		if end > hi {
			hi = end
		}
	}
	return lo, hi
}

// MinAddr is the lowest populated address. It is zero for an empty image.
func (img *Image) MinAddr() uint32 {
	lo, _ := img.bounds()
	return uint32(lo)
}

// Span is the distance from the lowest to one past the highest populated
// address.
func (img *Image) Span() uint64 {
	lo, hi := img.bounds()
	return hi - lo
}

// Bytes flattens the image starting at MinAddr, filling gaps with pad.
func (img *Image) Bytes(pad byte) []byte {
	lo, hi := img.bounds()
	if hi == lo {
		return []byte{}
	}
	return img.memory().ToBinary(uint32(lo), uint32(hi-lo), pad)
}

// ReadAt copies content at addr into p. Unpopulated bytes read as Padding.
func (img *Image) ReadAt(p []byte, addr uint32) {
	if len(p) == 0 {
		return
	}
	copy(p, img.memory().ToBinary(addr, uint32(len(p)), Padding))
}

// WriteAt overwrites content at addr, populating holes as needed.
func (img *Image) WriteAt(p []byte, addr uint32) error {
	if err := checkRange(addr, len(p)); err != nil {
		return err
	}
	lo, hi := uint64(addr), uint64(addr)+uint64(len(p))

	patched := &Image{}
	for _, s := range img.segments() {
		start := uint64(s.Address)
		end := start + uint64(len(s.Data))
		if end <= lo || start >= hi {
			if err := patched.Put(s.Address, s.Data); err != nil {
				return err
			}
			continue
		}
		if start < lo {
			if err := patched.Put(s.Address, s.Data[:lo-start]); err != nil {
				return err
			}
		}
		if end > hi {
			if err := patched.Put(uint32(hi), s.Data[hi-start:]); err != nil {
				return err
			}
		}
	}
	if err := patched.Put(addr, p); err != nil {
		return err
	}
	img.mem = patched.memory()
	return nil
}

// isHex reports whether path names an Intel HEX file.
func isHex(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".hex")
}

// LoadFile reads a region file. Intel HEX keeps its own addresses; a raw
// binary is placed at offset.
func LoadFile(path string, offset uint32) (*Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, err := ReadHex(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return img, nil
	case ".bin":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img := &Image{}
		if err := img.Put(offset, data); err != nil {
			return nil, err
		}
		return img, nil
	}
	return nil, fmt.Errorf("unsupported file format: %s", path)
}

// WriteFile writes img as Intel HEX or as a padded binary, by extension.
func WriteFile(path string, img *Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if isHex(path) {
		err = WriteHex(f, img)
	} else {
		_, err = f.Write(img.Bytes(Padding))
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
