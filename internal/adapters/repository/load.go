package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/homerun/internal/domain/model"
	"github.com/okian/homerun/pkg/logger"
	"github.com/okian/homerun/pkg/metrics"
)

// Source formats.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Source describes where a dataset came from.
type Source struct {
	Path        string
	Format      string
	Fingerprint string
	LoadedAt    time.Time
	Duration    time.Duration
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	table  string
	logger logger.Logger
}

// WithTable sets the SQLite table to read. Ignored for CSV.
func WithTable(table string) LoadOption {
	return func(o *loadOptions) {
		if table != "" {
			o.table = table
		}
	}
}

// WithLoadLogger sets the logger used while loading.
func WithLoadLogger(l logger.Logger) LoadOption {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// FormatOf picks the source format from the file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}
}

// Load reads the dataset at path once and fingerprints its bytes. Zero rows
// yield ErrDatasetEmpty; missing or malformed columns yield ErrMissingField.
func Load(ctx context.Context, path string, opts ...LoadOption) (*model.Dataset, Source, error) {
	o := loadOptions{table: "events", logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	format, err := FormatOf(path)
	if err != nil {
		return nil, Source{}, err
	}

	var events []model.Event
	var sum uint64
	switch format {
	case FormatCSV:
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, Source{}, fmt.Errorf("read dataset: %w", err)
		}
		sum = xxhash.Sum64(raw)
		events, err = ReadCSV(bytes.NewReader(raw))
		if err != nil {
			return nil, Source{}, fmt.Errorf("load %s: %w", path, err)
		}
	case FormatSQLite:
		sum, err = hashFile(path)
		if err != nil {
			return nil, Source{}, err
		}
		events, err = ReadSQLite(ctx, path, o.table)
		if err != nil {
			return nil, Source{}, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if len(events) == 0 {
		return nil, Source{}, fmt.Errorf("load %s: %w", path, model.ErrDatasetEmpty)
	}

	ds := model.NewDataset(events)
	src := Source{
		Path:        path,
		Format:      format,
		Fingerprint: strconv.FormatUint(sum, 16),
		LoadedAt:    time.Now(),
		Duration:    time.Since(start),
	}
	metrics.UpdateDataset(ds.Len(), len(ds.Players()), src.Duration)
	o.logger.Info(ctx, "dataset loaded",
		logger.String("path", path),
		logger.String("format", format),
		logger.String("fingerprint", src.Fingerprint),
		logger.Int("rows", ds.Len()),
		logger.Int("players", len(ds.Players())),
		logger.Duration("took", src.Duration),
	)
	return ds, src, nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("read dataset: %w", err)
	}
	defer f.Close()
	d := xxhash.New()
	if _, err := io.Copy(d, f); err != nil {
		return 0, fmt.Errorf("hash dataset: %w", err)
	}
	return d.Sum64(), nil
}
