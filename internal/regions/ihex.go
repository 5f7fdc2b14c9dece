package regions

import (
	"io"

	"github.com/marcinbor85/gohex"
)

const hexBytesPerLine = 16

// ReadHex parses an Intel HEX stream.
func ReadHex(r io.Reader) (*Image, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, err
	}
	return &Image{mem: mem}, nil
}

// WriteHex writes img as Intel HEX. Gaps between segments stay empty.
func WriteHex(w io.Writer, img *Image) error {
	return img.memory().DumpIntelHex(w, hexBytesPerLine)
}
