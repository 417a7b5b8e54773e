package stats

import "github.com/okian/homerun/internal/domain/model"

// MissingPolicy substitutes gauge inputs that are NaN so charts stay
// renderable on sparse data.
type MissingPolicy struct {
	Value float64 // used when the player's own aggregate is missing
	Max   float64 // used when the dataset-wide maximum is missing
}

// DefaultOnMissing maps a missing value to 0 and a missing maximum to 100.
var DefaultOnMissing = MissingPolicy{Value: 0, Max: 100}

func (p MissingPolicy) value(v float64) float64 {
	if !usable(v) {
		return p.Value
	}
	return v
}

func (p MissingPolicy) max(v float64) float64 {
	if !usable(v) {
		return p.Max
	}
	return v
}

// GaugeBounds reads the player's first-row Mean* aggregates and pairs them
// with the dataset-wide maxima of ExitVelocity, HitDistance and
// MeanPowerOfTheShot.
func (p MissingPolicy) GaugeBounds(ds *model.Dataset, player string) (Gauges, error) {
	series, err := PlayerSeriesOrErr(ds, player)
	if err != nil {
		return Gauges{}, err
	}
	first := series[0]
	rows := ds.Rows()

	return Gauges{
		ExitVelocity: Gauge{
			Value: p.value(first.MeanExitVel),
			Max:   p.max(columnMax(rows, func(e model.Event) float64 { return e.ExitVelocity })),
		},
		HitDistance: Gauge{
			Value: p.value(first.MeanHitDist),
			Max:   p.max(columnMax(rows, func(e model.Event) float64 { return e.HitDistance })),
		},
		Power: Gauge{
			Value: p.value(first.MeanPowerOfTheShot),
			Max:   p.max(columnMax(rows, func(e model.Event) float64 { return e.MeanPowerOfTheShot })),
		},
	}, nil
}
