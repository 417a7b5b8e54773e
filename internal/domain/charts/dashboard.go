package charts

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/okian/homerun/internal/domain/model"
)

// BuildDashboard builds every panel concurrently and returns the encoded
// figures in panel order. Any failure fails the whole dashboard.
func BuildDashboard(ctx context.Context, ds *model.Dataset, player string) ([]string, error) {
	panels := Panels()
	out := make([]string, len(panels))

	g, ctx := errgroup.WithContext(ctx)
	for i, p := range panels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fig, err := p.Build(ds, player)
			if err != nil {
				return fmt.Errorf("panel %s: %w", p.Name, err)
			}
			enc, err := fig.Encode()
			if err != nil {
				return fmt.Errorf("panel %s: %w", p.Name, err)
			}
			out[i] = enc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
