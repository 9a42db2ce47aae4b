// Package roster owns every change to an employee record. Cached payroll
// fields are recomputed here on each save and nowhere else.
package roster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/payroll"
	"github.com/mcclellann/fredPayroll/pkg/query"
	"github.com/mcclellann/fredPayroll/pkg/receipt"
	"github.com/mcclellann/fredPayroll/pkg/store"
)

var (
	ErrDuplicateEmployeeID = store.ErrDuplicateEmployeeID
	ErrEmployeeIDRequired  = errors.New("employee id is required")
	ErrNameRequired        = errors.New("employee name is required")
	ErrEntryNotFound       = errors.New("ledger entry not found")
	ErrInvalidKind         = errors.New("ledger kind must be advance or loan")
)

// Roster handles the business logic for employees, their ledgers and
// receipts.
type Roster struct {
	storage store.Storage
	logger  *zap.Logger
	now     func() time.Time

	mu sync.Mutex // Serializes read-modify-write of employee records
}

// NewRoster creates a Roster over the given Storage.
func NewRoster(s store.Storage, logger *zap.Logger) *Roster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roster{
		storage: s,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for timestamps and new entry dates.
func (r *Roster) WithClock(now func() time.Time) *Roster {
	r.now = now
	return r
}

func (r *Roster) List(ctx context.Context) ([]models.Employee, error) {
	return r.storage.ListEmployees(ctx)
}

// Search lists the employees matching c.
func (r *Roster) Search(ctx context.Context, c query.Criteria) ([]models.Employee, error) {
	all, err := r.storage.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(all, c), nil
}

func (r *Roster) Get(ctx context.Context, id uuid.UUID) (models.Employee, error) {
	return r.storage.GetEmployee(ctx, id)
}

// Create normalizes in and stores it as a new employee.
func (r *Roster) Create(ctx context.Context, in models.EmployeeInput) (models.Employee, error) {
	e := models.NewEmployee(in)
	if err := validate(e); err != nil {
		return models.Employee{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.storage.GetEmployee(ctx, e.ID); err == nil {
		e.ID = uuid.New()
	} else if !errors.Is(err, store.ErrEmployeeNotFound) {
		return models.Employee{}, err
	}
	return r.save(ctx, e)
}

// Update replaces the editable fields of the employee id with in. The
// identity and creation time are kept.
func (r *Roster) Update(ctx context.Context, id uuid.UUID, in models.EmployeeInput) (models.Employee, error) {
	e := models.NewEmployee(in)
	if err := validate(e); err != nil {
		return models.Employee{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.storage.GetEmployee(ctx, id)
	if err != nil {
		return models.Employee{}, err
	}
	e.ID = existing.ID
	e.CreatedAt = existing.CreatedAt
	return r.save(ctx, e)
}

// Upsert stores e as given, creating it when it does not exist yet.
func (r *Roster) Upsert(ctx context.Context, e models.Employee) (models.Employee, error) {
	if err := validate(e); err != nil {
		return models.Employee{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, e)
}

func (r *Roster) Remove(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.storage.DeleteEmployee(ctx, id); err != nil {
		return err
	}
	r.logger.Info("employee removed", zap.String("id", id.String()))
	return nil
}

// AddEntry appends a blank advance or loan dated today.
func (r *Roster) AddEntry(ctx context.Context, id uuid.UUID, kind models.LedgerKind) (models.Employee, models.LedgerEntry, error) {
	if !kind.Valid() {
		return models.Employee{}, models.LedgerEntry{}, ErrInvalidKind
	}

	var added models.LedgerEntry
	e, err := r.mutate(ctx, id, func(e *models.Employee) error {
		entries := ledger.AddEntry(e.Entries(kind), r.now())
		added = entries[len(entries)-1]
		e.SetEntries(kind, entries)
		return nil
	})
	return e, added, err
}

// UpdateEntry changes one field of an advance or loan.
func (r *Roster) UpdateEntry(ctx context.Context, id uuid.UUID, kind models.LedgerKind, entryID uuid.UUID, field ledger.Field, value any) (models.Employee, error) {
	if !kind.Valid() {
		return models.Employee{}, ErrInvalidKind
	}
	return r.mutate(ctx, id, func(e *models.Employee) error {
		if _, ok := ledger.Find(e.Entries(kind), entryID); !ok {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
		}
		e.SetEntries(kind, ledger.UpdateEntry(e.Entries(kind), entryID, field, value))
		return nil
	})
}

// RemoveEntry deletes an advance or loan. Removing an absent entry is not an
// error.
func (r *Roster) RemoveEntry(ctx context.Context, id uuid.UUID, kind models.LedgerKind, entryID uuid.UUID) (models.Employee, error) {
	if !kind.Valid() {
		return models.Employee{}, ErrInvalidKind
	}
	return r.mutate(ctx, id, func(e *models.Employee) error {
		e.SetEntries(kind, ledger.RemoveEntry(e.Entries(kind), entryID))
		return nil
	})
}

func (r *Roster) mutate(ctx context.Context, id uuid.UUID, fn func(*models.Employee) error) (models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.storage.GetEmployee(ctx, id)
	if err != nil {
		return models.Employee{}, err
	}
	if err := fn(&e); err != nil {
		return models.Employee{}, err
	}
	return r.save(ctx, e)
}

// save must be called with mu held.
func (r *Roster) save(ctx context.Context, e models.Employee) (models.Employee, error) {
	e = e.Clone()
	e.UniqueEntryIDs()
	for i := range e.Advances {
		e.Advances[i] = e.Advances[i].Normalized()
	}
	for i := range e.Loans {
		e.Loans[i] = e.Loans[i].Normalized()
	}
	payroll.Refresh(&e)

	now := r.now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	if err := r.storage.UpsertEmployee(ctx, e); err != nil {
		return models.Employee{}, fmt.Errorf("failed to store employee %s: %w", e.EmployeeID, err)
	}
	return e, nil
}

func validate(e models.Employee) error {
	if e.EmployeeID == "" {
		return ErrEmployeeIDRequired
	}
	if e.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// Reconcile rewrites every employee whose cached payroll fields disagree with
// its ledgers, for instance after rows were edited outside the roster. It
// returns how many records were fixed.
func (r *Roster) Reconcile(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.storage.ListEmployees(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}
	fixed := 0
	for _, e := range all {
		if !payroll.IsStale(e) {
			continue
		}
		r.logger.Warn("stale payroll cache",
			zap.String("employeeId", e.EmployeeID),
			zap.String("cachedNet", e.NetSalary.String()),
			zap.String("net", payroll.CurrentNetSalary(e).String()),
		)
		if _, err := r.save(ctx, e); err != nil {
			r.logger.Error("failed to reconcile employee", zap.String("employeeId", e.EmployeeID), zap.Error(err))
			continue
		}
		fixed++
	}
	return fixed, nil
}

// Run reconciles on every tick until ctx is done.
func (r *Roster) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fixed, err := r.Reconcile(ctx)
			if err != nil {
				r.logger.Error("reconcile failed", zap.Error(err))
				continue
			}
			if fixed > 0 {
				r.logger.Info("reconciled payroll cache", zap.Int("fixed", fixed))
			}
		}
	}
}

// IssueReceipt builds a receipt from the current state of employee id and
// stores it.
func (r *Roster) IssueReceipt(ctx context.Context, id uuid.UUID, t models.ReceiptType, custom []receipt.CustomItem, notes string) (models.Receipt, error) {
	e, err := r.storage.GetEmployee(ctx, id)
	if err != nil {
		return models.Receipt{}, err
	}
	rc, err := receipt.Build(e, t, custom, notes, r.now())
	if err != nil {
		return models.Receipt{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	issued, err := r.storage.ListReceipts(ctx)
	if err != nil {
		return models.Receipt{}, fmt.Errorf("failed to list receipts: %w", err)
	}
	rc.Number = receipt.UniqueNumber(rc.Number, issued)
	if err := r.storage.CreateReceipt(ctx, rc); err != nil {
		return models.Receipt{}, fmt.Errorf("failed to store receipt: %w", err)
	}
	r.logger.Info("receipt issued",
		zap.String("number", rc.Number),
		zap.String("employeeId", rc.EmployeeID),
		zap.String("type", string(rc.Type)),
	)
	return rc, nil
}

// Receipts lists issued receipts matching f, newest first.
func (r *Roster) Receipts(ctx context.Context, f receipt.Filter) ([]models.Receipt, error) {
	all, err := r.storage.ListReceipts(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(all), nil
}

func (r *Roster) Receipt(ctx context.Context, id uuid.UUID) (models.Receipt, error) {
	return r.storage.GetReceipt(ctx, id)
}
