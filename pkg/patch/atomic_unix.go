//go:build !windows
// +build !windows

package patch

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

// atomicReplace moves a finished temp file over dest. rename(2) is atomic
// within one filesystem, and the temp file always sits next to dest.
func atomicReplace(tmpPath, dest string, logger hclog.Logger) error {
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("publishing %s: %w", dest, err)
	}
	logger.Debug("✅ published", "path", dest)
	return nil
}
