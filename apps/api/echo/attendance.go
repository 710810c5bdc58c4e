package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	exportsvc "github.com/trezcool/mahudhurio/services/export"
	qrsvc "github.com/trezcool/mahudhurio/services/qr"
	"github.com/trezcool/mahudhurio/storage/sheets"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type attendanceAPI struct {
	conf     *core.Config
	logger   core.Logger
	source   sheets.Source
	emailSvc core.EmailService
	registry *attendance.Registry
}

func registerAttendanceAPI(g *echo.Group, deps *Deps) {
	api := attendanceAPI{
		conf:     deps.Conf,
		logger:   deps.Logger,
		source:   deps.Source,
		emailSvc: deps.EmailSvc,
		registry: deps.Registry,
	}

	ag := g.Group("/attendance", operatorSessionMiddleware())
	ag.POST("/codes", api.codeCreate)
	ag.GET("/board", api.boardRetrieve)
	ag.GET("/board/export", api.boardExport)
	ag.POST("/board/report", api.boardReport)
}

// Handlers

// codeCreate mints a fresh token, replaces the operator's session state
// wholesale and returns the QR payload. A failing submission source never
// blocks this path.
func (api *attendanceAPI) codeCreate(ctx echo.Context) error {
	if err := api.conf.ValidateForm(); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	data := new(attendance.MintRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(api.conf); err != nil {
		return err
	}

	tok, err := attendance.Mint(data.ValidityMinutes)
	if err != nil {
		return err
	}
	api.sessionState(ctx).Replace(tok, tok.IssuedAt)

	formURL := api.conf.FormURL(tok.Code)
	qrPNG, err := qrsvc.DataURL(formURL)
	if err != nil {
		return err
	}

	api.logger.Info(fmt.Sprintf("minted attendance code %s, valid %d min", tok.Code, data.ValidityMinutes))
	return ctx.JSON(http.StatusCreated, MintResponse{
		Token:           tok,
		ValidityMinutes: data.ValidityMinutes,
		FormURL:         formURL,
		QRPNG:           qrPNG,
	})
}

func (api *attendanceAPI) boardRetrieve(ctx echo.Context) error {
	board, err := api.buildBoard(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, board)
}

func (api *attendanceAPI) boardExport(ctx echo.Context) error {
	board, err := api.buildBoard(ctx)
	if err != nil {
		return err
	}
	buf, err := exportsvc.ExcelReport(board.Records)
	if err != nil {
		return err
	}

	filename := exportsvc.Filename(time.Now())
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (api *attendanceAPI) boardReport(ctx echo.Context) error {
	data := new(ReportRequest)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}

	board, err := api.buildBoard(ctx)
	if err != nil {
		return err
	}
	buf, err := exportsvc.ExcelReport(board.Records)
	if err != nil {
		return err
	}

	now := time.Now()
	to := make([]mail.Address, 0, len(data.To))
	for _, addr := range data.To {
		to = append(to, mail.Address{Address: addr})
	}
	api.emailSvc.SendMessages(&core.EmailMessage{
		To:      to,
		Subject: "Attendance report",
		BodyStr: fmt.Sprintf("Attendance report generated at %s. %d submissions included.", now.Format(time.RFC1123), len(board.Records)),
		Attachments: []core.Attachment{{
			Content:     bytes.NewBuffer(buf.Bytes()),
			ContentType: xlsxContentType,
			Filename:    exportsvc.Filename(now),
		}},
	})
	return ctx.NoContent(http.StatusAccepted)
}

// buildBoard runs the refresh pipeline: fetch, normalize, reconcile
// against the caller's current session, filter. Row-level failures are
// counted and dropped, never fatal to the batch.
func (api *attendanceAPI) buildBoard(ctx echo.Context) (*BoardResponse, error) {
	if err := api.conf.ValidateSource(); err != nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}

	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return nil, err
	}
	filter.Clean()

	// fetch-start time keys last-write-wins on the client: a stale
	// response is simply discarded if a newer refresh superseded it
	fetchedAt := time.Now()
	rows, err := api.source.FetchRows(ctx.Request().Context())
	if err != nil {
		return nil, err
	}

	records, rowErrs := attendance.NormalizeRows(rows, api.conf.Columns)
	if len(rowErrs) > 0 {
		api.logger.Warn(fmt.Sprintf("dropped %d unparseable submission rows", len(rowErrs)))
	}

	sess, active := api.sessionState(ctx).Current()
	labeled := attendance.Reconcile(sess, active, records)
	if labeled, err = filter.Apply(labeled); err != nil {
		return nil, err
	}

	board := &BoardResponse{
		FetchedAt:      fetchedAt,
		RefreshSeconds: int(api.conf.RefreshInterval.Seconds()),
		Dropped:        len(rowErrs),
		Records:        labeled,
	}
	if active {
		board.CurrentCode = sess.Token.Code
		board.CodeExpiresAt = &sess.Token.ExpiresAt
		board.SessionStartedAt = &sess.StartedAt
	}
	return board, nil
}

func (api *attendanceAPI) sessionState(ctx echo.Context) *attendance.State {
	return api.registry.Get(ctx.Get(operatorKeyCtx).(string))
}

type (
	MintResponse struct {
		attendance.Token
		ValidityMinutes int    `json:"validity_minutes"`
		FormURL         string `json:"form_url"`
		QRPNG           string `json:"qr_png"` // data URL
	}

	BoardResponse struct {
		FetchedAt        time.Time                  `json:"fetched_at"`
		RefreshSeconds   int                        `json:"refresh_seconds"`
		CurrentCode      string                     `json:"current_code,omitempty"`
		CodeExpiresAt    *time.Time                 `json:"code_expires_at,omitempty"`
		SessionStartedAt *time.Time                 `json:"session_started_at,omitempty"`
		Dropped          int                        `json:"dropped"`
		Records          []attendance.LabeledRecord `json:"records"`
	}

	ReportRequest struct {
		To []string `json:"to" validate:"required,min=1,dive,email"`
	}
)

func (rr *ReportRequest) Validate() error {
	for i, addr := range rr.To {
		rr.To[i] = core.CleanString(addr, true /* lower */)
	}
	return core.Validate.Struct(rr)
}
