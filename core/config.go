package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kat-co/vala"
	"github.com/spf13/viper"
)

// SheetColumns maps the logical submission fields onto the column headers
// of the external response sheet. Column names are configuration, not
// protocol; the defaults match a stock Google Form response sheet.
type SheetColumns struct {
	Timestamp        string
	Code             string
	LearnerID        string
	Email            string
	Audience         string
	Class            string
	SupportedLearner string
	EvaluatedLearner string
	EvaluationScore  string
}

type Config struct {
	Debug    bool
	TestMode bool
	Env      string // DEV (default), TEST, QA, PROD
	Build    string
	AppName  string

	Server struct {
		Host            string
		Addr            string
		DebugAddr       string
		ShutdownTimeout time.Duration
	}

	// external submission store (Google Sheets)
	Sheets struct {
		CredentialsJSON string // service account key, raw JSON
		SpreadsheetID   string
		SheetName       string
	}

	// form the QR payload points at
	Form struct {
		ID          string
		CodeEntryID string // entry.<id> of the attendance-code question
	}

	Columns SheetColumns

	ValidityChoices []int // allowed -minutes values for a mint
	DefaultValidity int
	RefreshInterval time.Duration // advisory polling cadence for clients

	DefaultFromEmail mail.Address
	SendgridApiKey   string
	RollbarToken     string
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Mahudhurio")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugAddr", ":8001")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("sheetName", "Form Responses 1")
	v.SetDefault("validityChoices", []int{1, 5, 10, 15})
	v.SetDefault("defaultValidity", 5)
	v.SetDefault("refreshInterval", time.Minute)
	v.SetDefault("defaultFromEmail", "noreply@localhost")

	// column header defaults
	v.SetDefault("colTimestamp", "Timestamp")
	v.SetDefault("colCode", "Attendance code")
	v.SetDefault("colLearnerID", "Learner ID")
	v.SetDefault("colEmail", "Email Address")
	v.SetDefault("colAudience", "Audience")
	v.SetDefault("colClass", "Class section")
	v.SetDefault("colSupportedLearner", "Supported learner")
	v.SetDefault("colEvaluatedLearner", "Evaluated learner")
	v.SetDefault("colEvaluationScore", "Evaluated learner score")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatalf("config.godotenv: %v", err)
		}
	}
	v.AutomaticEnv()

	conf := &Config{
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		Env:      env,
		Build:    v.GetString("build"),
		AppName:  v.GetString("appName"),

		ValidityChoices: v.GetIntSlice("validityChoices"),
		DefaultValidity: v.GetInt("defaultValidity"),
		RefreshInterval: v.GetDuration("refreshInterval"),

		DefaultFromEmail: mail.Address{Name: v.GetString("appName"), Address: v.GetString("defaultFromEmail")},
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
	}
	conf.Server.Host = v.GetString("serverHost")
	conf.Server.Addr = v.GetString("serverAddr")
	conf.Server.DebugAddr = v.GetString("serverDebugAddr")
	conf.Server.ShutdownTimeout = v.GetDuration("serverShutdownTimeout")

	conf.Sheets.CredentialsJSON = v.GetString("sheetsCredentialsJson")
	conf.Sheets.SpreadsheetID = v.GetString("spreadsheetId")
	conf.Sheets.SheetName = v.GetString("sheetName")

	conf.Form.ID = v.GetString("formId")
	conf.Form.CodeEntryID = v.GetString("formCodeEntryId")

	conf.Columns = SheetColumns{
		Timestamp:        v.GetString("colTimestamp"),
		Code:             v.GetString("colCode"),
		LearnerID:        v.GetString("colLearnerID"),
		Email:            v.GetString("colEmail"),
		Audience:         v.GetString("colAudience"),
		Class:            v.GetString("colClass"),
		SupportedLearner: v.GetString("colSupportedLearner"),
		EvaluatedLearner: v.GetString("colEvaluatedLearner"),
		EvaluationScore:  v.GetString("colEvaluationScore"),
	}
	return conf
}

// ValidateServer checks the settings every run needs.
func (conf *Config) ValidateServer() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.AppName, "appName"),
		vala.StringNotEmpty(conf.Server.Addr, "serverAddr"),
		vala.GreaterThan(conf.DefaultValidity, 0, "defaultValidity"),
	).Check()
}

// ValidateSource checks the settings needed to reach the submission store.
// A failure only disables refresh/export; minting must keep working.
func (conf *Config) ValidateSource() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.Sheets.CredentialsJSON, "sheetsCredentialsJson"),
		vala.StringNotEmpty(conf.Sheets.SpreadsheetID, "spreadsheetId"),
		vala.StringNotEmpty(conf.Sheets.SheetName, "sheetName"),
	).Check()
}

// ValidateForm checks the settings needed to build the QR payload URL.
func (conf *Config) ValidateForm() error {
	return vala.BeginValidation().Validate(
		vala.StringNotEmpty(conf.Form.ID, "formId"),
		vala.StringNotEmpty(conf.Form.CodeEntryID, "formCodeEntryId"),
	).Check()
}

// FormURL returns the prefilled form URL embedding the attendance code.
func (conf *Config) FormURL(code string) string {
	return fmt.Sprintf(
		"https://docs.google.com/forms/d/e/%s/viewform?usp=pp_url&%s=%s",
		conf.Form.ID, conf.Form.CodeEntryID, code,
	)
}
