package smoketest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/okian/homerun/pkg/logger"
)

var (
	firstNames = []string{"Aaron", "Pete", "Mookie", "Shohei", "Kyle", "Yordan", "Juan", "Mike"}
	lastNames  = []string{"Judge", "Alonso", "Betts", "Ohtani", "Schwarber", "Alvarez", "Soto", "Trout"}
	directions = []string{"left field", "center field", "right field"}
)

var header = []string{
	"PlayerName", "Season", "HomerunsOfSeasonSoFar", "ExitVelocity", "HitDistance",
	"ShotDirection", "LaunchAngle", "MeanExitVel", "MeanHitDist", "MeanPowerOfTheShot",
	"PlayerEvVariance", "MaxHomeruns", "video",
}

// DefaultGenerateConfig returns the generator defaults.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		Players:     DefaultPlayers,
		Seasons:     DefaultSeasons,
		FirstSeason: DefaultFirstSeason,
		MaxHomeruns: DefaultMaxHomeruns,
		Seed:        1,
		VideoBase:   DefaultVideoBase,
	}
}

type row struct {
	season    int
	homeruns  int
	ev, hd    float64
	la        float64
	direction string
	video     string
}

// Generate writes a synthetic dataset as CSV and returns the number of
// rows written. Per-player aggregate columns are computed from that
// player's rows.
func Generate(ctx context.Context, w io.Writer, cfg GenerateConfig) (int, error) {
	if cfg.Players < 1 || cfg.Seasons < 1 || cfg.MaxHomeruns < 1 {
		return 0, fmt.Errorf("generate: players, seasons and homeruns must be positive")
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	written := 0
	for p := range cfg.Players {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		name := playerName(p)
		rows, maxHR := playerRows(rng, cfg, name)
		meanEV, meanHD, meanPower, variance := aggregates(rows)
		for _, r := range rows {
			rec := []string{
				name,
				strconv.Itoa(r.season),
				strconv.Itoa(r.homeruns),
				formatFloat(r.ev),
				formatFloat(r.hd),
				r.direction,
				formatFloat(r.la),
				formatFloat(meanEV),
				formatFloat(meanHD),
				formatFloat(meanPower),
				formatFloat(variance),
				strconv.Itoa(maxHR),
				r.video,
			}
			if err := cw.Write(rec); err != nil {
				return written, fmt.Errorf("write row: %w", err)
			}
			written++
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("flush csv: %w", err)
	}
	return written, nil
}

// GenerateFile writes a synthetic dataset to path, creating parent
// directories as needed.
func GenerateFile(ctx context.Context, path string, cfg GenerateConfig) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPerm); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	n, err := Generate(ctx, f, cfg)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close file: %w", cerr)
	}
	if err != nil {
		return n, err
	}
	logger.Get().Info(ctx, "dataset generated",
		logger.String("path", path),
		logger.Int("rows", n),
		logger.Int("players", cfg.Players),
	)
	return n, nil
}

func playerName(i int) string {
	n := len(firstNames)
	name := firstNames[i%n] + " " + lastNames[(i/n)%len(lastNames)]
	if i >= n*len(lastNames) {
		name += " " + strconv.Itoa(i/(n*len(lastNames))+1)
	}
	return name
}

func playerRows(rng *rand.Rand, cfg GenerateConfig, name string) ([]row, int) {
	var rows []row
	maxHR := 0
	for s := range cfg.Seasons {
		season := cfg.FirstSeason + s
		hrs := 1 + rng.IntN(cfg.MaxHomeruns)
		maxHR = max(maxHR, hrs)
		for hr := 1; hr <= hrs; hr++ {
			rows = append(rows, row{
				season:    season,
				homeruns:  hr,
				ev:        minExitVelocity + rng.Float64()*exitVelocitySpan,
				hd:        minHitDistance + rng.Float64()*hitDistanceSpan,
				la:        minLaunchAngle + rng.Float64()*launchAngleSpan,
				direction: directions[rng.IntN(len(directions))],
				video:     cfg.VideoBase + videoID(name, season, hr),
			})
		}
	}
	return rows, maxHR
}

// aggregates returns mean exit velocity, mean hit distance, mean shot
// power (EV × HD / 1000) and the population variance of exit velocity.
func aggregates(rows []row) (meanEV, meanHD, meanPower, variance float64) {
	n := float64(len(rows))
	for _, r := range rows {
		meanEV += r.ev
		meanHD += r.hd
		meanPower += r.ev * r.hd / powerDivisor
	}
	meanEV /= n
	meanHD /= n
	meanPower /= n
	for _, r := range rows {
		d := r.ev - meanEV
		variance += d * d
	}
	variance /= n
	return meanEV, meanHD, meanPower, variance
}

// videoID derives a stable UUID for an event so equal seeds give equal files.
func videoID(player string, season, homeruns int) string {
	key := player + "/" + strconv.Itoa(season) + "/" + strconv.Itoa(homeruns)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', decimalsPerValue, 64)
}
