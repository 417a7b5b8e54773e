package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/homerun/internal/domain/model"
)

// ReadCSV decodes events from CSV with a header row. Columns are looked up by
// name, so extra columns and any column order are accepted.
func ReadCSV(r io.Reader) ([]model.Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	names, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv header: %w", model.ErrDatasetEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	h := newHeader(names)
	if miss := h.missing(); len(miss) > 0 {
		return nil, fmt.Errorf("csv columns %s: %w", strings.Join(miss, ", "), model.ErrMissingField)
	}

	var events []model.Event
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		rr := rowReader{h: h, rec: rec, line: line}
		e, err := rr.event()
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
