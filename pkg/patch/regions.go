package patch

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
	"github.com/provide-io/flashkit/go/flashkit/pkg/hooks"
)

// Region files written by the linker when the image spans two flash devices.
const (
	RegionInternal = "ER_IROM1"
	RegionExternal = "ER_IROM2"
)

const (
	// FillByte is the erased state of NOR flash.
	FillByte = 0xFF
	// BankSize is the internal flash bank the first region is padded to.
	BankSize = 512 * 1024
	// ChunkSize is the read size used when streaming the external region.
	ChunkSize = 128 * 1024
)

// ConcatRegionsHook adapts ConcatRegions to the hook signature.
func ConcatRegionsHook(ctx *hooks.Context) error {
	return ConcatRegions(ctx.Binary, ctx.Logger)
}

// ConcatRegions turns a directory of region files at binPath into a single
// flat image at the same path: the internal region, 0xFF up to BankSize, then
// the external region. A binPath that is not a directory is left alone.
func ConcatRegions(binPath string, logger hclog.Logger) error {
	// The temp file must land beside the directory, not inside it.
	binPath = filepath.Clean(binPath)
	info, err := os.Stat(binPath)
	if err != nil {
		return fmt.Errorf("reading linker output: %w", err)
	}
	if !info.IsDir() {
		logger.Trace("no region directory, nothing to concatenate", "path", binPath)
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(binPath), "."+filepath.Base(binPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp image: %w", err)
	}
	tmpPath := tmp.Name()
	published := false
	defer func() {
		if !published {
			os.Remove(tmpPath)
		}
	}()

	size, err := writeRegions(tmp, binPath, logger)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing temp image: %w", cerr)
	}
	if err != nil {
		return err
	}

	if err := os.RemoveAll(binPath); err != nil {
		return fmt.Errorf("removing region directory: %w", err)
	}
	if err := atomicReplace(tmpPath, binPath, logger); err != nil {
		return err
	}
	published = true

	logger.Info("✅ regions concatenated", "path", binPath, "size", size)
	return nil
}

func openRegion(dir, name string) (*os.File, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ferrors.ErrMissingRegion, name, err)
	}
	return f, err
}

func writeRegions(w io.Writer, dir string, logger hclog.Logger) (int64, error) {
	internal, err := openRegion(dir, RegionInternal)
	if err != nil {
		return 0, err
	}
	defer internal.Close()

	written, err := io.Copy(w, internal)
	if err != nil {
		return written, fmt.Errorf("copying %s: %w", RegionInternal, err)
	}

	if pad := BankSize - written; pad > 0 {
		n, err := w.Write(bytes.Repeat([]byte{FillByte}, int(pad)))
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("padding internal bank: %w", err)
		}
	} else if pad < 0 {
		logger.Warn("⚠️ internal region exceeds flash bank, padding skipped",
			"region", RegionInternal, "size", written, "bank", BankSize)
	}

	external, err := openRegion(dir, RegionExternal)
	if err != nil {
		return written, err
	}
	defer external.Close()

	buf := make([]byte, ChunkSize)
	for {
		n, err := io.ReadFull(external, buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, fmt.Errorf("copying %s: %w", RegionExternal, werr)
			}
			written += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("reading %s: %w", RegionExternal, err)
		}
	}
	return written, nil
}
