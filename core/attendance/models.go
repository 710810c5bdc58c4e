package attendance

import (
	"strings"
	"time"

	"github.com/trezcool/mahudhurio/core"
)

// Label classifies one submission against the current session state.
type Label string

const (
	// Accepted: the code matches the active token, or the row carries no
	// learner identity (instructor / peer-support / peer-evaluation rows).
	Accepted Label = "accepted"
	// OutOfSession: the submission predates the current operator session.
	OutOfSession Label = "out_of_session"
	// Mismatched: a learner-identified submission whose code does not equal
	// the active token. This is the anti-fraud signal.
	Mismatched Label = "mismatched"
	// Unclassifiable: no active session, or required fields are missing.
	Unclassifiable Label = "unclassifiable"
)

// Token is one issued attendance code with its validity window.
type Token struct {
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the token is still within its validity window.
// The boundary instant itself counts as live.
func (t Token) Live(now time.Time) bool {
	return !now.After(t.ExpiresAt)
}

// Session is one operator's continuous minting context: the active token
// plus the instant the session began. Distinct from the validity window
// of an individual token.
type Session struct {
	Token     Token
	StartedAt time.Time
}

// Record is the normalized view of one externally-submitted row.
// Records are immutable once observed; the engine only classifies them.
type Record struct {
	Row              int       `json:"row"` // stable 1-based key assigned at ingestion
	Timestamp        time.Time `json:"timestamp"`
	Code             string    `json:"code"`
	LearnerID        string    `json:"learner_id"`
	Email            string    `json:"email,omitempty"`
	Audience         string    `json:"audience,omitempty"`
	Class            string    `json:"class,omitempty"`
	SupportedLearner string    `json:"supported_learner,omitempty"`
	EvaluatedLearner string    `json:"evaluated_learner,omitempty"`
	EvaluationScore  string    `json:"evaluation_score,omitempty"`
}

type LabeledRecord struct {
	Record
	Label Label `json:"label"`
}

// MintRequest contains the only operator-supplied minting parameter.
type MintRequest struct {
	ValidityMinutes int `json:"validity_minutes" validate:"omitempty,validityminutes"`
}

func (mr *MintRequest) Validate(conf *core.Config) error {
	if mr.ValidityMinutes == 0 {
		mr.ValidityMinutes = conf.DefaultValidity
	}
	return core.Validate.Struct(mr)
}

// QueryFilter narrows the labeled board by calendar day and/or a
// case-insensitive class-section substring.
type QueryFilter struct {
	Date  string `query:"date"` // YYYY-MM-DD
	Class string `query:"class"`
}

func (qf *QueryFilter) Clean() {
	qf.Date = core.CleanString(qf.Date)
	qf.Class = core.CleanString(qf.Class)
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Date == "" && qf.Class == ""
}

// Apply filters the labeled set; an empty filter is a no-op.
func (qf QueryFilter) Apply(records []LabeledRecord) ([]LabeledRecord, error) {
	if qf.IsEmpty() {
		return records, nil
	}

	var day time.Time
	if qf.Date != "" {
		var err error
		if day, err = time.Parse("2006-01-02", qf.Date); err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "date", Error: "expected YYYY-MM-DD"})
		}
	}
	class := strings.ToLower(qf.Class)

	out := make([]LabeledRecord, 0, len(records))
	for _, rec := range records {
		if qf.Date != "" && !sameDay(rec.Timestamp, day) {
			continue
		}
		if class != "" && !strings.Contains(strings.ToLower(rec.Class), class) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
