package dummysheets

import (
	"context"
	"sync"

	"github.com/trezcool/mahudhurio/storage/sheets"
)

// Source is an in-memory submission store for tests and local dev.
type Source struct {
	mu   sync.RWMutex
	rows [][]interface{}
	err  error
}

var _ sheets.Source = (*Source)(nil)

func NewSource(rows ...[]interface{}) *Source {
	return &Source{rows: rows}
}

func (src *Source) FetchRows(ctx context.Context) ([][]interface{}, error) {
	src.mu.RLock()
	defer src.mu.RUnlock()

	if src.err != nil {
		return nil, src.err
	}
	out := make([][]interface{}, len(src.rows))
	copy(out, src.rows)
	return out, nil
}

// Append adds a row, mirroring the append-only real store.
func (src *Source) Append(row ...interface{}) {
	src.mu.Lock()
	defer src.mu.Unlock()
	src.rows = append(src.rows, row)
}

// Reset replaces all rows and clears any pending failure.
func (src *Source) Reset(rows ...[]interface{}) {
	src.mu.Lock()
	defer src.mu.Unlock()
	src.rows = rows
	src.err = nil
}

// FailWith makes every subsequent fetch return err; nil restores normal operation.
func (src *Source) FailWith(err error) {
	src.mu.Lock()
	defer src.mu.Unlock()
	src.err = err
}
