package datasets

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// LoadEpisodes loads every path with at most workers files in flight. Results
// keep the order of paths. The first failure cancels the remaining loads and
// is returned; no partial result is produced.
//
// onLoaded, when non-nil, is called once per loaded episode and may be called
// from several goroutines at once.
func LoadEpisodes(ctx context.Context, paths []string, opts LoadOptions, workers int, onLoaded func(*Episode)) ([]*Episode, error) {
	if workers < 1 {
		workers = 1
	}

	episodes := make([]*Episode, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ep, err := LoadEpisode(path, opts)
			if err != nil {
				return err
			}
			episodes[i] = ep
			if onLoaded != nil {
				onLoaded(ep)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return episodes, nil
}
