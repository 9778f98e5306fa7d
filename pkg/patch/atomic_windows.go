//go:build windows
// +build windows

package patch

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/windows"
)

const (
	publishAttempts = 3
	publishDelay    = 50 * time.Millisecond
)

// atomicReplace moves a finished temp file over dest with MoveFileEx,
// retrying with backoff while another process holds dest open.
func atomicReplace(tmpPath, dest string, logger hclog.Logger) error {
	from, err := windows.UTF16PtrFromString(tmpPath)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", tmpPath, err)
	}
	to, err := windows.UTF16PtrFromString(dest)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", dest, err)
	}

	flags := uint32(windows.MOVEFILE_REPLACE_EXISTING | windows.MOVEFILE_WRITE_THROUGH)
	delay := publishDelay
	for attempt := 1; ; attempt++ {
		err = windows.MoveFileEx(from, to, flags)
		if err == nil {
			logger.Debug("✅ published", "path", dest, "attempt", attempt)
			return nil
		}
		if attempt == publishAttempts {
			return fmt.Errorf("publishing %s after %d attempts: %w", dest, attempt, err)
		}
		logger.Debug("🔁 publish blocked, retrying", "path", dest, "delay", delay, "error", err)
		time.Sleep(delay)
		delay *= 2
	}
}
