package attendance

import (
	"reflect"
	"testing"
	"time"
)

var sessionStart = time.Date(2021, 3, 15, 10, 0, 0, 0, time.UTC)

func activeSession(code string) Session {
	return Session{
		Token: Token{
			Code:      code,
			IssuedAt:  sessionStart,
			ExpiresAt: sessionStart.Add(5 * time.Minute),
		},
		StartedAt: sessionStart,
	}
}

func at(secs int) time.Time { return sessionStart.Add(time.Duration(secs) * time.Second) }

func TestReconcile(t *testing.T) {
	sess := activeSession("ABC123")

	tests := []struct {
		name string
		rec  Record
		want Label
	}{
		{
			name: "matching code is accepted",
			rec:  Record{Timestamp: at(5), Code: "ABC123", LearnerID: "S1"},
			want: Accepted,
		},
		{
			name: "foreign code is mismatched",
			rec:  Record{Timestamp: at(5), Code: "XYZ999", LearnerID: "S2"},
			want: Mismatched,
		},
		{
			name: "instructor row never mismatches",
			rec:  Record{Timestamp: at(5), Code: "XYZ999", LearnerID: ""},
			want: Accepted,
		},
		{
			name: "whitespace-only learner id counts as blank",
			rec:  Record{Timestamp: at(5), Code: "XYZ999", LearnerID: "   "},
			want: Accepted,
		},
		{
			name: "blank identity and blank code",
			rec:  Record{Timestamp: at(5), Code: "  ", LearnerID: ""},
			want: Unclassifiable,
		},
		{
			name: "pre-session beats exact code match",
			rec:  Record{Timestamp: at(-10), Code: "ABC123", LearnerID: "S1"},
			want: OutOfSession,
		},
		{
			name: "pre-session beats blank-identity rule",
			rec:  Record{Timestamp: at(-10), Code: "XYZ999", LearnerID: ""},
			want: OutOfSession,
		},
		{
			name: "code with surrounding whitespace still matches",
			rec:  Record{Timestamp: at(5), Code: "  ABC123 ", LearnerID: "S1"},
			want: Accepted,
		},
		{
			name: "codes compare as text not numbers",
			rec:  Record{Timestamp: at(5), Code: "0123", LearnerID: "S1"},
			want: Mismatched,
		},
		{
			name: "exactly at session start is in session",
			rec:  Record{Timestamp: at(0), Code: "ABC123", LearnerID: "S1"},
			want: Accepted,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(sess, true, []Record{tt.rec})
			if len(got) != 1 {
				t.Fatalf("Reconcile() returned %d records; want 1", len(got))
			}
			if got[0].Label != tt.want {
				t.Errorf("label = %v; want %v", got[0].Label, tt.want)
			}
		})
	}
}

func TestReconcile_noActiveSession(t *testing.T) {
	records := []Record{
		{Timestamp: at(5), Code: "ABC123", LearnerID: "S1"},
		{Timestamp: at(6), Code: "", LearnerID: ""},
	}
	for _, lr := range Reconcile(Session{}, false, records) {
		if lr.Label != Unclassifiable {
			t.Errorf("row %d label = %v; want %v without a session", lr.Row, lr.Label, Unclassifiable)
		}
	}
}

// a code that matched a superseded token must flag as mismatched
func TestReconcile_supersededCode(t *testing.T) {
	var st State
	first, err := Mint(5)
	if err != nil {
		t.Fatalf("Mint() failed: %v", err)
	}
	st.Replace(first, sessionStart)

	second, err := Mint(5)
	if err != nil {
		t.Fatalf("Mint() failed: %v", err)
	}
	if second.Code == first.Code {
		t.Fatalf("sequential mints produced identical codes %q", first.Code)
	}
	st.Replace(second, sessionStart)

	sess, ok := st.Current()
	if !ok {
		t.Fatal("Current() reported no session after two mints")
	}
	got := Reconcile(sess, ok, []Record{
		{Row: 1, Timestamp: at(30), Code: first.Code, LearnerID: "S1"},
		{Row: 2, Timestamp: at(31), Code: second.Code, LearnerID: "S2"},
	})
	if got[0].Label != Mismatched {
		t.Errorf("superseded code label = %v; want %v", got[0].Label, Mismatched)
	}
	if got[1].Label != Accepted {
		t.Errorf("current code label = %v; want %v", got[1].Label, Accepted)
	}
}

func TestReconcile_pureAndIdempotent(t *testing.T) {
	sess := activeSession("ABC123")
	records := []Record{
		{Row: 1, Timestamp: at(5), Code: "ABC123", LearnerID: "S1"},
		{Row: 2, Timestamp: at(6), Code: "XYZ999", LearnerID: "S2"},
		{Row: 3, Timestamp: at(-10), Code: "ABC123", LearnerID: "S3"},
	}
	snapshot := make([]Record, len(records))
	copy(snapshot, records)

	first := Reconcile(sess, true, records)
	second := Reconcile(sess, true, records)

	if !reflect.DeepEqual(first, second) {
		t.Error("Reconcile() is not idempotent for identical inputs")
	}
	if !reflect.DeepEqual(records, snapshot) {
		t.Error("Reconcile() mutated its input records")
	}
}

func TestReconcile_blankIdentityNeverMismatched(t *testing.T) {
	sess := activeSession("ABC123")
	codes := []string{"", "ABC123", "XYZ999", "0123", "garbage", "  ABC123  "}
	for _, code := range codes {
		got := Reconcile(sess, true, []Record{{Timestamp: at(5), Code: code, LearnerID: " "}})
		if got[0].Label == Mismatched {
			t.Errorf("blank identity with code %q labeled Mismatched", code)
		}
	}
}
