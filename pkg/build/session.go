// Package build runs the post-link stage for one or more targets.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/flashkit/go/flashkit/internal/outdir"
	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
	"github.com/provide-io/flashkit/go/flashkit/pkg/hooks"
	"github.com/provide-io/flashkit/go/flashkit/pkg/patch"
	"github.com/provide-io/flashkit/go/flashkit/pkg/resources"
	"github.com/provide-io/flashkit/go/flashkit/pkg/target"
)

// Request names the linker output of one target.
type Request struct {
	Target    string
	Toolchain string // empty selects the target's default
	ELF       string
	Binary    string // flat image, or directory of region files
	Force     bool   // ignore an up-to-date completion marker
}

// Result describes what PostLink produced.
type Result struct {
	Target       string
	Toolchain    target.Toolchain
	Binary       string
	Outputs      []string
	Hooks        int
	Cached       bool
	ProgramCycle time.Duration
	Err          error
}

// Session carries what every post-link run shares.
type Session struct {
	Catalog     *target.Catalog
	Codec       patch.HexCodec
	ResourceDir string
	// OutRoot, when set, receives a private copy of each target's linker
	// output and the hooks run on that copy. Otherwise hooks patch in place.
	OutRoot string
	Logger  hclog.Logger
}

// NewSession returns a session that patches in place with the ihex codec.
func NewSession(catalog *target.Catalog, logger hclog.Logger) *Session {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Session{
		Catalog: catalog,
		Codec:   patch.IHexCodec{},
		Logger:  logger,
	}
}

func (s *Session) resolve(req Request) (*target.Descriptor, target.Toolchain, error) {
	desc, err := s.Catalog.Get(req.Target)
	if err != nil {
		return nil, "", err
	}
	tc := desc.DefaultToolchain()
	if req.Toolchain != "" {
		if tc, err = target.ParseToolchain(req.Toolchain); err != nil {
			return nil, "", err
		}
	}
	if !desc.Supports(tc) {
		return nil, "", fmt.Errorf("%w: %s with %s", ferrors.ErrUnsupported, desc.Name(), tc)
	}
	return desc, tc, nil
}

// PostLink installs the target's hooks into a fresh registry and dispatches
// the post-link stage over the request's artefacts.
func (s *Session) PostLink(ctx context.Context, req Request) (Result, error) {
	res := Result{Target: req.Target}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	desc, tc, err := s.resolve(req)
	if err != nil {
		return res, err
	}
	res.Toolchain = tc
	res.ProgramCycle = desc.ProgramCycleDuration()
	logger := s.Logger.Named(desc.Name()).With("toolchain", tc)

	rs, err := resources.Scan(s.ResourceDir, logger)
	if err != nil {
		return res, err
	}

	binPath, elfPath := req.Binary, req.ELF
	var dir string
	want := outdir.Marker{Target: desc.Name(), Toolchain: tc.String()}
	if s.OutRoot != "" {
		if dir, err = outdir.Create(s.OutRoot, desc.Name(), tc.String()); err != nil {
			return res, err
		}
		// Region directories have no checksum and are always rebuilt.
		want.Source, _ = outdir.Checksum(req.Binary)
		if want.Resources, err = outdir.Digest(rs.HexFiles); err != nil {
			return res, fmt.Errorf("fingerprinting resources: %w", err)
		}
		if !req.Force && outdir.IsComplete(dir, want) {
			m, _ := outdir.ReadMarker(dir)
			res.Binary, res.Outputs, res.Cached = m.Binary, m.Outputs, true
			logger.Info("✅ post-link output up to date", "dir", dir)
			return res, nil
		}
		outdir.Clean(dir)

		if binPath, err = stage(req.Binary, dir); err != nil {
			return res, err
		}
		if elfPath != "" {
			if elfPath, err = stage(req.ELF, dir); err != nil {
				return res, err
			}
		}
	}
	res.Binary = binPath

	reg := hooks.NewRegistry()
	res.Hooks = patch.Install(reg, desc, tc, s.Codec)
	logger.Debug("🔍 hooks installed", "post_link", desc.PostLink(), "count", res.Hooks)

	hctx := &hooks.Context{
		Target:    desc,
		Toolchain: tc,
		Resources: rs,
		ELF:       elfPath,
		Binary:    binPath,
		Logger:    logger.Named("patch"),
	}
	if err := reg.Dispatch(tc, hooks.StagePostLink, hctx); err != nil {
		if dir != "" {
			if merr := outdir.MarkFailed(dir, err.Error()); merr != nil {
				logger.Warn("could not write failure marker", "error", merr)
			}
		}
		return res, err
	}
	res.Outputs = hctx.Outputs

	if dir != "" {
		sum, err := outdir.Checksum(binPath)
		if err != nil {
			return res, fmt.Errorf("checksumming %s: %w", binPath, err)
		}
		want.Binary, want.Checksum, want.Outputs = binPath, sum, res.Outputs
		if err := outdir.MarkComplete(dir, want); err != nil {
			return res, fmt.Errorf("writing completion marker: %w", err)
		}
	}
	return res, nil
}

// stage copies a file, or a flat directory of files, into dir.
func stage(src, dir string) (string, error) {
	dst := filepath.Join(dir, filepath.Base(src))
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return dst, copyFile(src, dst)
	}

	if err := os.RemoveAll(dst); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
				return "", err
			}
		}
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		if err := os.RemoveAll(dst); err != nil {
			return err
		}
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
