// Package csvfile loads observation sets from fixed-schema CSV files.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"context"

	"itsa/domain/timeseries"
	"itsa/ports"
)

// column aliases accepted in the header row, all lower-cased
var columnAliases = map[string]string{
	"year":           "year",
	"month":          "month",
	"time":           "time",
	"time_index":     "time",
	"outcome":        "outcome",
	"outcome_count":  "outcome",
	"count":          "outcome",
	"intervention":   "intervention",
	"indicator":      "intervention",
	"population":     "population",
	"pop":            "population",
	"std_population": "std_population",
	"stdpop":         "std_population",
	"std_pop":        "std_population",
}

var requiredColumns = []string{"year", "month", "time", "outcome", "intervention", "population", "std_population"}

// Source reads a CSV file once per Load call.
type Source struct {
	filePath string
}

// NewSource creates a CSV observation source for the given path.
func NewSource(filePath string) *Source {
	return &Source{filePath: filePath}
}

var _ ports.ObservationSource = (*Source)(nil)

// Load parses and validates the file. Any invalid row (negative count,
// non-positive population, reverting indicator) rejects the whole file.
func (s *Source) Load(ctx context.Context) (*timeseries.Dataset, error) {
	f, err := os.Open(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.filePath, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.filePath, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: need a header row and at least one observation", s.filePath)
	}

	index, err := mapHeader(records[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.filePath, err)
	}

	obs := make([]timeseries.Observation, 0, len(records)-1)
	for rowNum, record := range records[1:] {
		o, err := parseRow(record, index)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", s.filePath, rowNum+2, err)
		}
		obs = append(obs, o)
	}

	ds, err := timeseries.New(obs)
	if err != nil {
		return nil, err
	}
	log.Printf("[CSVSource] Loaded %d observations from %s", ds.Len(), s.filePath)
	return ds, nil
}

func mapHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := columnAliases[name]; ok {
			index[canonical] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	return index, nil
}

func parseRow(record []string, index map[string]int) (timeseries.Observation, error) {
	intAt := func(col string) (int, error) {
		i := index[col]
		if i >= len(record) {
			return 0, fmt.Errorf("short row, no %s", col)
		}
		return strconv.Atoi(strings.TrimSpace(record[i]))
	}
	floatAt := func(col string) (float64, error) {
		i := index[col]
		if i >= len(record) {
			return 0, fmt.Errorf("short row, no %s", col)
		}
		return strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
	}

	var o timeseries.Observation
	var err error
	if o.Year, err = intAt("year"); err != nil {
		return o, fmt.Errorf("year: %w", err)
	}
	if o.Month, err = intAt("month"); err != nil {
		return o, fmt.Errorf("month: %w", err)
	}
	if o.TimeIndex, err = intAt("time"); err != nil {
		return o, fmt.Errorf("time: %w", err)
	}
	if o.OutcomeCount, err = intAt("outcome"); err != nil {
		return o, fmt.Errorf("outcome: %w", err)
	}
	if o.Intervention, err = intAt("intervention"); err != nil {
		return o, fmt.Errorf("intervention: %w", err)
	}
	if o.Population, err = floatAt("population"); err != nil {
		return o, fmt.Errorf("population: %w", err)
	}
	if o.StdPop, err = floatAt("std_population"); err != nil {
		return o, fmt.Errorf("std_population: %w", err)
	}
	return o, nil
}

// WriteFile renders a dataset back to CSV with the canonical header. Used by
// the simulate command.
func WriteFile(path string, ds *timeseries.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(requiredColumns); err != nil {
		return err
	}
	for _, o := range ds.Observations {
		record := []string{
			strconv.Itoa(o.Year),
			strconv.Itoa(o.Month),
			strconv.Itoa(o.TimeIndex),
			strconv.Itoa(o.OutcomeCount),
			strconv.Itoa(o.Intervention),
			strconv.FormatFloat(o.Population, 'f', -1, 64),
			strconv.FormatFloat(o.StdPop, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
