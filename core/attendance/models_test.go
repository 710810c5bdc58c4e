package attendance

import (
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/mahudhurio/core"
)

func initTestValidators() *core.Config {
	conf := &core.Config{ValidityChoices: []int{1, 5, 10, 15}, DefaultValidity: 5}
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator, conf.ValidityChoices)
	return conf
}

func TestMintRequest_Validate(t *testing.T) {
	conf := initTestValidators()

	tests := []struct {
		name    string
		minutes int
		want    int
		wantErr bool
	}{
		{name: "zero takes the default", minutes: 0, want: 5},
		{name: "allowed choice", minutes: 15, want: 15},
		{name: "disallowed choice", minutes: 7, wantErr: true},
		{name: "negative", minutes: -5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mr := &MintRequest{ValidityMinutes: tt.minutes}
			err := mr.Validate(conf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v; wantErr %v", err, tt.wantErr)
			}
			if err == nil && mr.ValidityMinutes != tt.want {
				t.Errorf("ValidityMinutes = %d; want %d", mr.ValidityMinutes, tt.want)
			}
		})
	}
}

func TestQueryFilter_Apply(t *testing.T) {
	day1 := time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2021, 3, 16, 9, 30, 0, 0, time.UTC)
	records := []LabeledRecord{
		{Record: Record{Row: 1, Timestamp: day1, Class: "CS101"}, Label: Accepted},
		{Record: Record{Row: 2, Timestamp: day1, Class: "MA202"}, Label: Mismatched},
		{Record: Record{Row: 3, Timestamp: day2, Class: "cs101"}, Label: Accepted},
	}

	tests := []struct {
		name     string
		filter   QueryFilter
		wantRows []int
	}{
		{name: "empty filter is a no-op", filter: QueryFilter{}, wantRows: []int{1, 2, 3}},
		{name: "by date", filter: QueryFilter{Date: "2021-03-15"}, wantRows: []int{1, 2}},
		{name: "by class, case-insensitive", filter: QueryFilter{Class: "cs1"}, wantRows: []int{1, 3}},
		{name: "date and class", filter: QueryFilter{Date: "2021-03-16", Class: "CS101"}, wantRows: []int{3}},
		{name: "no matches", filter: QueryFilter{Date: "2021-01-01"}, wantRows: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Clean()
			got, err := tt.filter.Apply(records)
			if err != nil {
				t.Fatalf("Apply() failed: %v", err)
			}
			rows := make([]int, 0, len(got))
			for _, lr := range got {
				rows = append(rows, lr.Row)
			}
			if len(rows) != len(tt.wantRows) {
				t.Fatalf("rows = %v; want %v", rows, tt.wantRows)
			}
			for i := range rows {
				if rows[i] != tt.wantRows[i] {
					t.Fatalf("rows = %v; want %v", rows, tt.wantRows)
				}
			}
		})
	}
}

func TestQueryFilter_badDate(t *testing.T) {
	qf := QueryFilter{Date: "15-03-2021"}
	_, err := qf.Apply([]LabeledRecord{})
	if err == nil {
		t.Fatal("Apply() expected an error for a malformed date")
	}
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("error type = %T; want *core.ValidationError", err)
	}
}
