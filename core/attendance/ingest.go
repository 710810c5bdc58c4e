package attendance

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/mahudhurio/core"
)

// IngestionError is a row-level normalization failure. It excludes that
// row from reconciliation but never aborts the batch.
type IngestionError struct {
	Row int
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// timestamp layouts observed in form response sheets, tried in order
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
}

// NormalizeRows converts raw sheet rows (header first) into Records.
// Identity-bearing cells are coerced to text unconditionally: a numeric
// cell never loses leading zeros or comes out in scientific notation.
// Rows whose timestamp fails to parse are returned as errors, one per row.
func NormalizeRows(rows [][]interface{}, cols core.SheetColumns) ([]Record, []*IngestionError) {
	if len(rows) < 2 {
		return nil, nil
	}

	idx := headerIndex(rows[0])
	cell := func(row []interface{}, name string) string {
		i, ok := idx[strings.ToLower(core.CleanString(name))]
		if !ok || i >= len(row) {
			return ""
		}
		return cellString(row[i])
	}

	records := make([]Record, 0, len(rows)-1)
	var errs []*IngestionError
	for i, row := range rows[1:] {
		key := i + 1

		ts, err := parseTimestamp(cell(row, cols.Timestamp))
		if err != nil {
			errs = append(errs, &IngestionError{Row: key, Err: err})
			continue
		}

		records = append(records, Record{
			Row:              key,
			Timestamp:        ts,
			Code:             core.CleanString(cell(row, cols.Code)),
			LearnerID:        core.CleanString(cell(row, cols.LearnerID)),
			Email:            core.CleanString(cell(row, cols.Email)),
			Audience:         core.CleanString(cell(row, cols.Audience)),
			Class:            core.CleanString(cell(row, cols.Class)),
			SupportedLearner: core.CleanString(cell(row, cols.SupportedLearner)),
			EvaluatedLearner: core.CleanString(cell(row, cols.EvaluatedLearner)),
			EvaluationScore:  core.CleanString(cell(row, cols.EvaluationScore)),
		})
	}
	return records, errs
}

func headerIndex(header []interface{}) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(core.CleanString(cellString(h)))
		if name == "" {
			continue
		}
		if _, dup := idx[name]; !dup { // first occurrence wins
			idx[name] = i
		}
	}
	return idx
}

// cellString renders any cell value as text. Numeric cells use the plain
// 'f' format: "00123" stays "00123" when the source kept it textual, and
// 123 becomes "123", never "1.23E+2".
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

func parseTimestamp(s string) (time.Time, error) {
	s = core.CleanString(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}
