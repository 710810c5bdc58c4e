package googlesheets

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/storage/sheets"
)

type source struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string
}

var _ sheets.Source = (*source)(nil)

// NewSource connects to the configured Google response sheet using the
// service-account key from config.
func NewSource(ctx context.Context, conf *core.Config) (sheets.Source, error) {
	if err := conf.ValidateSource(); err != nil {
		return nil, err
	}
	svc, err := gsheets.NewService(
		ctx,
		option.WithCredentialsJSON([]byte(conf.Sheets.CredentialsJSON)),
		option.WithScopes(gsheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets client")
	}
	return &source{
		svc:           svc,
		spreadsheetID: conf.Sheets.SpreadsheetID,
		sheetName:     conf.Sheets.SheetName,
	}, nil
}

func (src *source) FetchRows(ctx context.Context) ([][]interface{}, error) {
	// FORMATTED_VALUE keeps cells as displayed: a learner id entered as
	// "00123" comes back textual instead of a trimmed number.
	resp, err := src.svc.Spreadsheets.Values.
		Get(src.spreadsheetID, "'"+src.sheetName+"'").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Values, nil
}

func mapError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusNotFound, http.StatusForbidden:
			return errors.Wrap(sheets.ErrDocumentNotFound, gErr.Message)
		case http.StatusBadRequest:
			// the API rejects an unknown sheet range with a 400
			return errors.Wrap(sheets.ErrSheetNotFound, gErr.Message)
		}
	}
	return errors.Wrap(sheets.ErrSourceUnavailable, err.Error())
}
