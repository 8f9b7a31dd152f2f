package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"where2eat/models"
)

var csvHeader = []string{
	"rank", "id", "name", "rating", "review_count", "price", "distance_m", "distance_mi",
	"latitude", "longitude", "address", "phone", "url",
}

var _ ShortlistWriter = (*CSVWriter)(nil)

// CSVWriter writes a ranked shortlist to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	rows   int
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends the shortlist in rank order. Ranks continue across calls.
// Unknown rating, distance and price are written as empty cells.
func (c *CSVWriter) Write(shortlist []models.Restaurant) error {
	for _, r := range shortlist {
		c.rows++
		row := []string{
			strconv.Itoa(c.rows),
			r.ID,
			r.Name,
			"",
			strconv.Itoa(r.ReviewCount),
			"",
			"",
			"",
			"",
			"",
			r.Address,
			r.Phone,
			r.URL,
		}
		if r.IsRated() {
			row[3] = strconv.FormatFloat(r.Rating, 'f', 1, 64)
		}
		if r.PriceTier.Known() {
			row[5] = r.PriceTier.String()
		}
		if r.HasDistance() {
			row[6] = strconv.FormatFloat(r.Distance, 'f', 1, 64)
			row[7] = strconv.FormatFloat(r.DistanceMiles(), 'f', 1, 64)
		}
		if r.Coordinates != nil {
			row[8] = strconv.FormatFloat(r.Coordinates.Latitude, 'f', -1, 64)
			row[9] = strconv.FormatFloat(r.Coordinates.Longitude, 'f', -1, 64)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
