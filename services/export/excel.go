package exportsvc

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/mahudhurio/core/attendance"
)

const sheetName = "Attendance"

// timeFormat matches what operators see on the board
const timeFormat = "15:04:05 02-01-2006"

// column projection, in display order
var headers = []string{
	"#", "Time", "Email", "Audience", "Attendance code", "Learner ID",
	"Class section", "Supported learner", "Evaluated learner", "Score", "Status",
}

// Filename stamps the workbook name with the export instant.
func Filename(now time.Time) string {
	return "attendance_" + now.Format("20060102_150405") + ".xlsx"
}

// ExcelReport writes the labeled board as an .xlsx workbook, mismatched
// rows highlighted the same way the table view renders them.
func ExcelReport(records []attendance.LabeledRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, errors.Wrap(err, "resolving header cell")
		}
		if err = f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, errors.Wrap(err, "writing header")
		}
	}

	mismatchStyle, err := f.NewStyle(`{"fill":{"type":"pattern","color":["#FFD2D2"],"pattern":1},"font":{"color":"#D8000C"}}`)
	if err != nil {
		return nil, errors.Wrap(err, "creating mismatch style")
	}

	for i, lr := range records {
		row := i + 2
		values := []interface{}{
			i + 1,
			lr.Timestamp.Format(timeFormat),
			lr.Email,
			lr.Audience,
			lr.Code,
			lr.LearnerID,
			lr.Class,
			lr.SupportedLearner,
			lr.EvaluatedLearner,
			lr.EvaluationScore,
			string(lr.Label),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, errors.Wrap(err, "resolving cell")
			}
			if err = f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, errors.Wrapf(err, "writing row %d", row)
			}
		}

		if lr.Label == attendance.Mismatched {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(values), row)
			if err = f.SetCellStyle(sheetName, first, last, mismatchStyle); err != nil {
				return nil, errors.Wrapf(err, "styling row %d", row)
			}
		}
	}

	if err = f.SetColWidth(sheetName, "B", "K", 22); err != nil {
		return nil, errors.Wrap(err, "sizing columns")
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "serializing workbook")
	}
	return buf, nil
}
