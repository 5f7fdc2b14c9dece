package regions

import "fmt"

// Padding fills the gaps between regions in binary outputs.
const Padding byte = 0xFF

// Region is one named slice of the flash layout. Filename is empty for a
// region that contributes no content; for the active region it is replaced
// by the freshly linked application.
type Region struct {
	Name     string `cty:"name"`
	Offset   uint32 `cty:"offset"`
	Length   uint32 `cty:"length"`
	Active   bool   `cty:"active"`
	Filename string `cty:"filename"`
}

func (r Region) String() string {
	return fmt.Sprintf("%s[0x%x+0x%x]", r.Name, r.Offset, r.Length)
}

// UpdateWhitelist names the regions that make up the update image.
var UpdateWhitelist = map[string]struct{}{
	"application": {},
}

// WithApplication returns a copy of list in which every active region
// points at app.
func WithApplication(list []Region, app string) []Region {
	out := make([]Region, len(list))
	for i, r := range list {
		if r.Active {
			r.Filename = app
		}
		out[i] = r
	}
	return out
}

// UpdateRegions returns the regions of list that belong to the update image.
func UpdateRegions(list []Region) []Region {
	var out []Region
	for _, r := range list {
		if _, ok := UpdateWhitelist[r.Name]; ok {
			out = append(out, r)
		}
	}
	return out
}
