package attendance

import "github.com/trezcool/mahudhurio/core"

// Reconcile labels every record against the operator's current session.
// Pure: the input slice is never mutated, no clock is read (the
// out-of-session comparison uses the session's own reference instant),
// and identical inputs always yield identical output.
func Reconcile(sess Session, active bool, records []Record) []LabeledRecord {
	out := make([]LabeledRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, LabeledRecord{Record: rec, Label: classify(sess, active, rec)})
	}
	return out
}

// classify applies the labeling policy in precedence order:
//  1. no active session -> Unclassifiable
//  2. submitted before the session started -> OutOfSession, even on an
//     exact code match (the student could not have seen this code)
//  3. blank learner identity -> never Mismatched; Accepted when a code is
//     present, Unclassifiable otherwise
//  4. string comparison of codes -> Accepted / Mismatched
func classify(sess Session, active bool, rec Record) Label {
	if !active {
		return Unclassifiable
	}
	if rec.Timestamp.Before(sess.StartedAt) {
		return OutOfSession
	}

	code := core.CleanString(rec.Code)
	if core.CleanString(rec.LearnerID) == "" {
		if code != "" {
			return Accepted
		}
		return Unclassifiable
	}

	// codes are compared as text, never as numbers
	if code == sess.Token.Code {
		return Accepted
	}
	return Mismatched
}
