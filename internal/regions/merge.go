package regions

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/mbedpio/internal/builderr"
	"github.com/vk/mbedpio/internal/ctxlog"
)

var (
	// ErrNoContent is returned for an active region without a file.
	ErrNoContent = errors.New("active region has no contents: no file found")
	// ErrDoesNotFit is returned when a file is larger than its region.
	ErrDoesNotFit = errors.New("contents do not fit the region")
	// ErrTooLarge is returned when the merged image exceeds the size
	// restriction.
	ErrTooLarge = errors.New("merged image exceeds the size restriction")
	// ErrRegionOverlap is returned when two declared regions share
	// addresses.
	ErrRegionOverlap = errors.New("regions overlap")
)

// DefaultUpdateExt is the update image extension of targets that do not
// name one.
const DefaultUpdateExt = "bin"

// MergeOptions control the checks applied while merging.
type MergeOptions struct {
	// Target names the board in errors and in the update file name.
	Target string
	// RestrictSize caps the merged span. When set, every file must also
	// fit its own region.
	RestrictSize *uint32
	// RestrictInactiveOnly applies RestrictSize to region lists without an
	// active region. Such lists are merged unchecked by default.
	RestrictInactiveOnly bool
	// UpdateExt is the extension of the update image, DefaultUpdateExt
	// when empty.
	UpdateExt string
}

// restriction returns the size limit that applies to list, nil for none.
func (o MergeOptions) restriction(list []Region) *uint32 {
	if o.RestrictSize == nil || o.RestrictInactiveOnly {
		return o.RestrictSize
	}
	for _, r := range list {
		if r.Active {
			return o.RestrictSize
		}
	}
	return nil
}

// CheckLayout rejects region lists whose declared address ranges intersect.
// Empty regions never overlap.
func CheckLayout(list []Region, target string) error {
	sorted := append([]Region(nil), list...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var last Region
	var lastEnd uint64
	for _, r := range sorted {
		if r.Length == 0 {
			continue
		}
		if uint64(r.Offset) < lastEnd {
			return &builderr.LayoutError{
				Target: target,
				Region: r.Name,
				Err:    fmt.Errorf("%w: %s and %s", ErrRegionOverlap, last, r),
			}
		}
		if end := uint64(r.Offset) + uint64(r.Length); end > lastEnd {
			last, lastEnd = r, end
		}
	}
	return nil
}

// Build places the regions' files into one image. Nothing is written.
func Build(ctx context.Context, list []Region, opts MergeOptions) (*Image, error) {
	logger := ctxlog.FromContext(ctx)
	if err := CheckLayout(list, opts.Target); err != nil {
		return nil, err
	}
	limit := opts.restriction(list)
	merged := &Image{}
	seen := make(map[string]struct{})

	for _, r := range list {
		if r.Active && r.Filename == "" {
			return nil, &builderr.LayoutError{Target: opts.Target, Region: r.Name, Err: ErrNoContent}
		}
		if r.Filename == "" {
			continue
		}
		if _, ok := seen[r.Filename]; ok {
			logger.Debug("Skipping region, file merged previously.", "region", r.Name, "file", r.Filename)
			continue
		}

		logger.Debug("Filling region.", "region", r.Name, "file", r.Filename)
		part, err := LoadFile(r.Filename, r.Offset)
		if err != nil {
			return nil, &builderr.LayoutError{Target: opts.Target, Region: r.Name, Err: err}
		}
		if limit != nil && part.Span() > uint64(r.Length) {
			return nil, &builderr.LayoutError{
				Target: opts.Target,
				Region: r.Name,
				Err:    fmt.Errorf("%w: 0x%x > 0x%x", ErrDoesNotFit, part.Span(), r.Length),
			}
		}
		if err := merged.Merge(part); err != nil {
			return nil, &builderr.LayoutError{Target: opts.Target, Region: r.Name, Err: err}
		}
		seen[r.Filename] = struct{}{}
	}

	if limit != nil && merged.Span() > uint64(*limit) {
		return nil, &builderr.LayoutError{
			Target: opts.Target,
			Err:    fmt.Errorf("%w: 0x%x > 0x%x", ErrTooLarge, merged.Span(), *limit),
		}
	}
	logger.Debug("Space used after regions merged.", "bytes", merged.Span())
	return merged, nil
}

// Merge builds the image of list and writes it to dest.
func Merge(ctx context.Context, list []Region, dest string, opts MergeOptions) error {
	img, err := Build(ctx, list, opts)
	if err != nil {
		return err
	}
	return WriteFile(dest, img)
}

// UpdateFilename derives the update image name from the firmware path, the
// target and the update extension: firmware.hex for K64F becomes
// firmware_K64F_update.bin unless ext says otherwise.
func UpdateFilename(firmware, target, ext string) string {
	base := filepath.Base(firmware)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		ext = DefaultUpdateExt
	}
	return fmt.Sprintf("%s_%s_update.%s", stem, target, ext)
}

// MergeResult lists the files written by MergeApps. Update is empty when no
// region belongs to the update image.
type MergeResult struct {
	Firmware string
	Update   string
}

// MergeApps merges the freshly linked application app with the other
// regions into firmware, and the update-eligible regions into an update
// image inside buildDir. Both images are computed before either file is
// written.
func MergeApps(ctx context.Context, list []Region, app, firmware, buildDir string, opts MergeOptions) (*MergeResult, error) {
	list = WithApplication(list, app)

	full, err := Build(ctx, list, opts)
	if err != nil {
		return nil, err
	}

	var update *Image
	var updatePath string
	if ur := UpdateRegions(list); len(ur) > 0 {
		update, err = Build(ctx, ur, opts)
		if err != nil {
			return nil, err
		}
		updatePath = filepath.Join(buildDir, UpdateFilename(firmware, opts.Target, opts.UpdateExt))
	}

	if err := WriteFile(firmware, full); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", firmware, err)
	}
	res := &MergeResult{Firmware: firmware}
	if update != nil {
		if err := WriteFile(updatePath, update); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", updatePath, err)
		}
		res.Update = updatePath
	}
	ctxlog.FromContext(ctx).Info("Merged firmware regions.", "firmware", res.Firmware, "update", res.Update)
	return res, nil
}
