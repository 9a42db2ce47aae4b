package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mcclellann/fredPayroll/pkg/models"
)

// MemoryStore keeps everything in process. It is used by tests and by the
// API when no database path is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	employees map[uuid.UUID]models.Employee
	order     []uuid.UUID
	receipts  []models.Receipt
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees: make(map[uuid.UUID]models.Employee),
	}
}

func (m *MemoryStore) ListEmployees(_ context.Context) ([]models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Employee, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.employees[id].Clone())
	}
	return out, nil
}

func (m *MemoryStore) GetEmployee(_ context.Context, id uuid.UUID) (models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return models.Employee{}, ErrEmployeeNotFound
	}
	return e.Clone(), nil
}

func (m *MemoryStore) GetEmployeeByCode(_ context.Context, employeeID string) (models.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		if e := m.employees[id]; e.EmployeeID == employeeID {
			return e.Clone(), nil
		}
	}
	return models.Employee{}, ErrEmployeeNotFound
}

func (m *MemoryStore) UpsertEmployee(_ context.Context, e models.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.order {
		if id != e.ID && m.employees[id].EmployeeID == e.EmployeeID {
			return fmt.Errorf("%w: %s", ErrDuplicateEmployeeID, e.EmployeeID)
		}
	}
	if prev, ok := m.employees[e.ID]; ok {
		e.CreatedAt = prev.CreatedAt
	} else {
		m.order = append(m.order, e.ID)
	}
	m.employees[e.ID] = e.Clone()
	return nil
}

func (m *MemoryStore) DeleteEmployee(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(m.employees, id)
	m.order = slices.DeleteFunc(m.order, func(x uuid.UUID) bool { return x == id })
	return nil
}

func (m *MemoryStore) CreateReceipt(_ context.Context, r models.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.Items = slices.Clone(r.Items)
	m.receipts = append(m.receipts, r)
	return nil
}

func (m *MemoryStore) GetReceipt(_ context.Context, id uuid.UUID) (models.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.receipts {
		if r.ID == id {
			r.Items = slices.Clone(r.Items)
			return r, nil
		}
	}
	return models.Receipt{}, ErrReceiptNotFound
}

// ListReceipts returns receipts newest first.
func (m *MemoryStore) ListReceipts(_ context.Context) ([]models.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Receipt, 0, len(m.receipts))
	for i := len(m.receipts) - 1; i >= 0; i-- {
		r := m.receipts[i]
		r.Items = slices.Clone(r.Items)
		out = append(out, r)
	}
	return out, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
