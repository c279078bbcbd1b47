package analytics

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"mercator-hq/feedback/pkg/storage"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ErrUnsupportedFormat is returned by NewExporter for unknown formats.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Exporter writes analysis records to w.
type Exporter interface {
	Export(ctx context.Context, records []storage.AnalysisRecord, w io.Writer) error
	ContentType() string
}

// NewExporter returns the exporter for format ("csv" or "json").
func NewExporter(format string) (Exporter, error) {
	switch format {
	case FormatCSV:
		return NewCSVExporter(true), nil
	case FormatJSON, "":
		return NewJSONExporter(false), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: csv, json)", ErrUnsupportedFormat, format)
	}
}

// CSVExporter exports records as CSV. Suggestions are written as a JSON
// array in a single column.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

// ContentType implements Exporter.
func (e *CSVExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Export implements Exporter.
func (e *CSVExporter) Export(ctx context.Context, records []storage.AnalysisRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(recordToRow(&records[i])); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"id", "created_at", "sentiment", "score", "summary", "suggestions", "cached", "fallback", "text",
}

func recordToRow(r *storage.AnalysisRecord) []string {
	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	encoded, _ := json.Marshal(suggestions)

	return []string{
		r.ID,
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.Sentiment,
		strconv.Itoa(r.Score),
		r.Summary,
		string(encoded),
		strconv.FormatBool(r.Cached),
		strconv.FormatBool(r.Fallback),
		r.Text,
	}
}

// JSONExporter exports records as a JSON array.
type JSONExporter struct {
	// Pretty enables indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// ContentType implements Exporter.
func (e *JSONExporter) ContentType() string { return "application/json" }

// Export implements Exporter. An empty history is written as [].
func (e *JSONExporter) Export(ctx context.Context, records []storage.AnalysisRecord, w io.Writer) error {
	if records == nil {
		records = []storage.AnalysisRecord{}
	}

	enc := json.NewEncoder(w)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}
