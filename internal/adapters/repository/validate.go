package repository

import (
	"errors"
	"fmt"

	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/internal/domain/stats"
)

// Validate computes every player's consistency percentage and joins the
// failures. Callers running in strict mode treat any error as fatal.
func Validate(ds *model.Dataset) error {
	if ds.Len() == 0 {
		return model.ErrDatasetEmpty
	}
	var errs []error
	for _, p := range ds.Players() {
		if _, err := stats.ConsistencyPercentage(stats.PlayerSeries(ds, p)); err != nil {
			errs = append(errs, fmt.Errorf("player %q: %w", p, err))
		}
	}
	return errors.Join(errs...)
}
