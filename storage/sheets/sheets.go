package sheets

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors, one per failure kind so the API can report a specific
	// inline message per refresh attempt
	ErrSourceUnavailable = errors.New("submission source unreachable")
	ErrDocumentNotFound  = errors.New("spreadsheet not found; has it been shared with the service account?")
	ErrSheetNotFound     = errors.New("sheet not found in spreadsheet")
)

// Source is any append-only tabular store of form submissions.
type Source interface {
	// FetchRows returns the header row followed by data rows, all cells raw.
	FetchRows(ctx context.Context) ([][]interface{}, error)
}
