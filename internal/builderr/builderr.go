// Package builderr holds the fatal error types shared by configuration
// extraction and firmware merging. Non-fatal resource problems are not
// errors at all; they are logged as warnings where they occur.
package builderr

import "fmt"

// Stages reported by ConfigError.
const (
	StageMetadata = "metadata"
	StageProfile  = "profile"
	StageOverlay  = "overlay"
	StageClassify = "classify"
	StageInspect  = "inspect"
	StageLdScript = "ldscript"
	StageHook     = "hook"
)

// ConfigError aborts configuration extraction. It names the target and the
// stage that failed.
type ConfigError struct {
	Target string
	Stage  string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("configuration error during %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("configuration error for target %s during %s: %v", e.Target, e.Stage, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// LayoutError aborts a firmware merge. Region is empty when the failure
// concerns the image as a whole (e.g. the size restriction).
type LayoutError struct {
	Target string
	Region string
	Err    error
}

func (e *LayoutError) Error() string {
	switch {
	case e.Region != "" && e.Target != "":
		return fmt.Sprintf("layout error for target %s in region %s: %v", e.Target, e.Region, e.Err)
	case e.Region != "":
		return fmt.Sprintf("layout error in region %s: %v", e.Region, e.Err)
	case e.Target != "":
		return fmt.Sprintf("layout error for target %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("layout error: %v", e.Err)
}

func (e *LayoutError) Unwrap() error { return e.Err }

// Config wraps err as a ConfigError unless it already is one.
func Config(target, stage string, err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*ConfigError); ok {
		return ce
	}
	return &ConfigError{Target: target, Stage: stage, Err: err}
}
