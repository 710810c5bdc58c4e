package main

import (
	"net/mail"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	"github.com/trezcool/mahudhurio/storage/sheets"
	dummysheets "github.com/trezcool/mahudhurio/storage/sheets/dummy"
)

func newTestConfig() *core.Config {
	conf := &core.Config{
		TestMode:         true,
		AppName:          "Mahudhurio",
		ValidityChoices:  []int{1, 5, 10, 15},
		DefaultValidity:  5,
		RefreshInterval:  time.Minute,
		DefaultFromEmail: mail.Address{Name: "Mahudhurio", Address: "noreply@localhost"},
	}
	conf.Server.Addr = ":8000"
	conf.Sheets.CredentialsJSON = `{"type":"service_account"}`
	conf.Sheets.SpreadsheetID = "test-spreadsheet"
	conf.Sheets.SheetName = "Form Responses 1"
	conf.Form.ID = "test-form"
	conf.Form.CodeEntryID = "entry.2033789124"
	return conf
}

func setup(t *testing.T) (*commandLine, *dummysheets.Source) {
	t.Helper()

	conf := newTestConfig()

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator, conf.ValidityChoices)

	src := dummysheets.NewSource()
	return &commandLine{conf: conf, source: src}, src
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	fails   bool // any non-nil error
}

func Test_commandLine_run(t *testing.T) {
	cli, src := setup(t)
	src.Append("Timestamp", "Attendance code")

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "checkconfig", args: []string{"checkconfig"}},
		{name: "mint default validity", args: []string{"mint"}},
		{name: "mint valid minutes", args: []string{"mint", "-minutes", "15"}},
		{name: "mint invalid minutes", args: []string{"mint", "-minutes", "7"}, fails: true},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			case tt.fails:
				if err == nil {
					t.Error("cli.run() expected an error")
				}
			case err != nil:
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}
}

func Test_commandLine_checkConfig(t *testing.T) {
	cli, src := setup(t)

	// a broken source must surface
	src.FailWith(sheets.ErrSourceUnavailable)
	if err := cli.run([]string{"admin", "checkconfig"}); err == nil {
		t.Error("cli.run() expected a source error")
	}
	src.FailWith(nil)

	// incomplete source settings must surface before any fetch
	cli.conf.Sheets.SpreadsheetID = ""
	if err := cli.run([]string{"admin", "checkconfig"}); err == nil {
		t.Error("cli.run() expected a config error")
	}
}

func Test_commandLine_mintOut(t *testing.T) {
	cli, _ := setup(t)

	var gotName string
	var gotData []byte
	writeFileFunc = func(name string, data []byte, perm os.FileMode) error {
		gotName = name
		gotData = data
		return nil
	}
	defer func() { writeFileFunc = os.WriteFile }()

	if err := cli.run([]string{"admin", "mint", "-out", "qr.png"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}
	if gotName != "qr.png" {
		t.Errorf("wrote to %q; want %q", gotName, "qr.png")
	}
	if len(gotData) == 0 {
		t.Error("wrote an empty QR PNG")
	}
	// PNG magic bytes
	if len(gotData) < 8 || string(gotData[1:4]) != "PNG" {
		t.Error("payload is not a PNG")
	}
}
