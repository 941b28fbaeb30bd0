package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"ekiroute/pkg/batch"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// RequiredColumns must all be present in the input header.
var RequiredColumns = []string{"origin_lat", "origin_lng", "dest_lat", "dest_lng"}

// ErrEmpty is returned for input without data rows.
var ErrEmpty = errors.New("input has no data rows")

// MissingColumnsError lists required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Template is a starter input file.
const Template = "id,origin_name,origin_lat,origin_lng,dest_name,dest_lat,dest_lng\n" +
	"1,福岡市役所,33.5902,130.4017,博多駅,33.5903,130.4208\n" +
	"2,佐賀県庁,33.2494,130.2988,佐賀駅,33.2637,130.3009\n"

// ReadRows parses an input table. A leading UTF-8 BOM is ignored, blank lines
// are skipped and every value is trimmed. Short lines leave trailing fields empty.
func ReadRows(r io.Reader) ([]batch.Row, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := makeIndex(header)
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var rows []batch.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rows)+1, err)
		}
		if isBlank(record) {
			continue
		}

		rows = append(rows, batch.Row{
			ID:         getField(record, idx, "id"),
			OriginName: getField(record, idx, "origin_name"),
			OriginLat:  getField(record, idx, "origin_lat"),
			OriginLng:  getField(record, idx, "origin_lng"),
			DestName:   getField(record, idx, "dest_name"),
			DestLat:    getField(record, idx, "dest_lat"),
			DestLng:    getField(record, idx, "dest_lng"),
		})
	}

	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return rows, nil
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ResultColumns is the header of an exported result table.
var ResultColumns = []string{"id", "origin_name", "dest_name", "distance_km", "duration_min", "cost_yen", "status", "debug_url"}

// WriteResults exports results as CSV, prefixed with a UTF-8 BOM so
// spreadsheet software picks the right encoding. Segments and waypoints are
// not exported.
func WriteResults(w io.Writer, results []batch.Result) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(ResultColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range results {
		record := []string{
			r.ID,
			r.OriginName,
			r.DestName,
			r.Distance(),
			r.Duration(),
			r.Cost(),
			r.Status(),
			r.DebugURL,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write result %s: %w", r.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush results: %w", err)
	}
	return bw.Close()
}

// WriteTemplate writes the starter input file, with a BOM like the exports.
func WriteTemplate(w io.Writer) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	if _, err := io.WriteString(bw, Template); err != nil {
		return fmt.Errorf("failed to write template: %w", err)
	}
	return bw.Close()
}
