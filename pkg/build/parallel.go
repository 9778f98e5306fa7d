package build

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	ferrors "github.com/provide-io/flashkit/go/flashkit/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// checkDistinct rejects requests that would write the same output directory
// or patch the same linker output. Requests that fail to resolve are left for
// PostLink to report.
func (s *Session) checkDistinct(reqs []Request) error {
	builds := make(map[string]bool, len(reqs))
	binaries := make(map[string]string, len(reqs))
	for _, req := range reqs {
		desc, tc, err := s.resolve(req)
		if err != nil {
			continue
		}
		key := desc.Name() + "/" + tc.String()
		if builds[key] {
			return fmt.Errorf("%w: %s", ferrors.ErrDuplicateRequest, key)
		}
		builds[key] = true

		if req.Binary == "" {
			continue
		}
		bin := filepath.Clean(req.Binary)
		if other, ok := binaries[bin]; ok && s.OutRoot == "" {
			return fmt.Errorf("%w: %s and %s both patch %s", ferrors.ErrDuplicateRequest, other, key, bin)
		}
		binaries[bin] = key
	}
	return nil
}

// RunAll runs PostLink for every request with at most jobs in flight. A
// failing target does not stop the others; their errors are joined. Results
// keep the order of reqs.
func (s *Session) RunAll(ctx context.Context, reqs []Request, jobs int) ([]Result, error) {
	if err := s.checkDistinct(reqs); err != nil {
		return nil, err
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(reqs))
	if len(reqs) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(reqs)))

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			// Each index is written by one goroutine only.
			res, err := s.PostLink(gctx, req)
			res.Err = err
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Target, r.Err))
		}
	}
	return results, errors.Join(errs...)
}
