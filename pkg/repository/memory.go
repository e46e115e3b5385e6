package repository

import (
	"context"
	"sync"

	"github.com/secmon-lab/suistat/pkg/domain/interfaces"
	"github.com/secmon-lab/suistat/pkg/domain/model"
)

// Memory is an in-memory tabular source
type Memory struct {
	mu    sync.RWMutex
	rows  []model.Row
	reads int
	err   error
}

var _ interfaces.TabularSource = (*Memory)(nil)

// NewMemory creates a memory source holding rows
func NewMemory(rows []model.Row) *Memory {
	return &Memory{rows: rows}
}

// ReadRows returns a copy of the stored rows
func (m *Memory) ReadRows(ctx context.Context) ([]model.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++

	if m.err != nil {
		return nil, m.err
	}

	result := make([]model.Row, len(m.rows))
	for i, row := range m.rows {
		cp := make(model.Row, len(row))
		for k, v := range row {
			cp[normalizeColumn(k)] = v
		}
		result[i] = cp
	}
	return result, nil
}

// SetRows replaces the stored rows
func (m *Memory) SetRows(rows []model.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
}

// SetError makes every following read fail with err until cleared with nil
func (m *Memory) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Reads returns how many times ReadRows was called
func (m *Memory) Reads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads
}

// Close does nothing
func (m *Memory) Close() error {
	return nil
}
