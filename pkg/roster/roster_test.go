package roster

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mcclellann/fredPayroll/pkg/ledger"
	"github.com/mcclellann/fredPayroll/pkg/models"
	"github.com/mcclellann/fredPayroll/pkg/query"
	"github.com/mcclellann/fredPayroll/pkg/receipt"
	"github.com/mcclellann/fredPayroll/pkg/store"
)

var clock = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func setupRoster(t *testing.T) (*Roster, store.Storage) {
	t.Helper()
	s := store.NewMemoryStore()
	r := NewRoster(s, zap.NewNop()).WithClock(func() time.Time { return clock })
	return r, s
}

func johnDoe() models.EmployeeInput {
	return models.EmployeeInput{
		EmployeeID:  "EMP001",
		Name:        "John Doe",
		Location:    "Dubai",
		JobTitle:    "Software Developer",
		JoiningDate: "2024-01-15",
		BasicSalary: "50000",
		Commission:  5000,
		Advances: []models.LedgerEntryInput{
			{OriginalAmount: "2000", Deduction: "2000", Reason: "rent"},
		},
		Loans: []models.LedgerEntryInput{
			{OriginalAmount: 1000, Deduction: 1000},
		},
	}
}

func TestCreate_RefreshesCachedFields(t *testing.T) {
	r, s := setupRoster(t)
	ctx := context.Background()

	e, err := r.Create(ctx, johnDoe())
	require.NoError(t, err)

	assert.True(t, e.NetSalary.Equal(decimal.NewFromInt(52000)), "got %s", e.NetSalary)
	assert.True(t, e.RemainingAdvance.IsZero())
	assert.True(t, e.RemainingLoan.IsZero())
	assert.Equal(t, clock, e.CreatedAt)
	assert.Equal(t, clock, e.UpdatedAt)

	stored, err := s.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, stored.NetSalary.Equal(e.NetSalary))
}

func TestCreate_Validation(t *testing.T) {
	r, _ := setupRoster(t)
	ctx := context.Background()

	in := johnDoe()
	in.EmployeeID = "  "
	_, err := r.Create(ctx, in)
	assert.ErrorIs(t, err, ErrEmployeeIDRequired)

	in = johnDoe()
	in.Name = ""
	_, err = r.Create(ctx, in)
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = r.Create(ctx, johnDoe())
	require.NoError(t, err)
	_, err = r.Create(ctx, johnDoe())
	assert.ErrorIs(t, err, ErrDuplicateEmployeeID)
}

func TestUpdate_KeepsIdentity(t *testing.T) {
	r, _ := setupRoster(t)
	ctx := context.Background()

	created, err := r.Create(ctx, johnDoe())
	require.NoError(t, err)

	later := clock.Add(24 * time.Hour)
	r.WithClock(func() time.Time { return later })

	in := johnDoe()
	in.ID = uuid.New().String()
	in.Name = "John Q. Doe"
	in.Overtime = "250"
	updated, err := r.Update(ctx, created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "John Q. Doe", updated.Name)
	assert.Equal(t, clock, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.True(t, updated.NetSalary.Equal(decimal.NewFromInt(52250)))

	_, err = r.Update(ctx, uuid.New(), johnDoe())
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)
}

func TestLedgerEntryLifecycle(t *testing.T) {
	r, _ := setupRoster(t)
	ctx := context.Background()

	e, err := r.Create(ctx, johnDoe())
	require.NoError(t, err)

	e, added, err := r.AddEntry(ctx, e.ID, models.LedgerKindLoan)
	require.NoError(t, err)
	require.Len(t, e.Loans, 2)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), added.Date)
	assert.True(t, added.OriginalAmount.IsZero())

	e, err = r.UpdateEntry(ctx, e.ID, models.LedgerKindLoan, added.ID, ledger.FieldOriginalAmount, "3000")
	require.NoError(t, err)
	e, err = r.UpdateEntry(ctx, e.ID, models.LedgerKindLoan, added.ID, ledger.FieldDeduction, 5000)
	require.NoError(t, err)

	loan, ok := ledger.Find(e.Loans, added.ID)
	require.True(t, ok)
	assert.True(t, loan.Deduction.Equal(decimal.NewFromInt(3000)), "deduction is clamped to the original amount")
	assert.True(t, loan.RemainingAmount.IsZero())
	assert.True(t, e.NetSalary.Equal(decimal.NewFromInt(49000)))

	e, err = r.UpdateEntry(ctx, e.ID, models.LedgerKindLoan, added.ID, ledger.FieldDeduction, "500")
	require.NoError(t, err)
	assert.True(t, e.RemainingLoan.Equal(decimal.NewFromInt(2500)))

	_, err = r.UpdateEntry(ctx, e.ID, models.LedgerKindLoan, uuid.New(), ledger.FieldDeduction, "1")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	e, err = r.RemoveEntry(ctx, e.ID, models.LedgerKindLoan, added.ID)
	require.NoError(t, err)
	assert.Len(t, e.Loans, 1)
	assert.True(t, e.RemainingLoan.IsZero())
	assert.True(t, e.NetSalary.Equal(decimal.NewFromInt(52000)))

	e, err = r.RemoveEntry(ctx, e.ID, models.LedgerKindLoan, added.ID)
	require.NoError(t, err, "removing twice is a no-op")
	assert.Len(t, e.Loans, 1)

	_, _, err = r.AddEntry(ctx, e.ID, models.LedgerKind("bonus"))
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestSearch(t *testing.T) {
	r, _ := setupRoster(t)
	ctx := context.Background()

	_, err := r.Create(ctx, johnDoe())
	require.NoError(t, err)
	jane := johnDoe()
	jane.EmployeeID = "EMP002"
	jane.Name = "Jane Smith"
	jane.Location = "Sharjah"
	jane.BasicSalary = 30000
	_, err = r.Create(ctx, jane)
	require.NoError(t, err)

	found, err := r.Search(ctx, query.Criteria{Location: "Sharjah"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "EMP002", found[0].EmployeeID)

	found, err = r.Search(ctx, query.Criteria{})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestReconcile_FixesStaleCache(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := store.NewMemoryStore()
	r := NewRoster(s, zap.New(core)).WithClock(func() time.Time { return clock })
	ctx := context.Background()

	e, err := r.Create(ctx, johnDoe())
	require.NoError(t, err)

	stale := e
	stale.NetSalary = decimal.NewFromInt(1)
	require.NoError(t, s.UpsertEmployee(ctx, stale))

	fixed, err := r.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Equal(t, 1, logs.FilterMessage("stale payroll cache").Len())

	stored, err := s.GetEmployee(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, stored.NetSalary.Equal(decimal.NewFromInt(52000)))

	fixed, err = r.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestRun_StopsWithContext(t *testing.T) {
	r, _ := setupRoster(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestIssueReceipt(t *testing.T) {
	r, _ := setupRoster(t)
	ctx := context.Background()

	e, err := r.Create(ctx, johnDoe())
	require.NoError(t, err)

	rc, err := r.IssueReceipt(ctx, e.ID, models.ReceiptTypeSalary, nil, "June")
	require.NoError(t, err)
	assert.True(t, rc.Total.Equal(decimal.NewFromInt(52000)))
	assert.Equal(t, receipt.Number(clock), rc.Number)

	_, err = r.IssueReceipt(ctx, e.ID, models.ReceiptType("refund"), nil, "")
	assert.ErrorIs(t, err, receipt.ErrUnknownType)

	_, err = r.IssueReceipt(ctx, uuid.New(), models.ReceiptTypeSalary, nil, "")
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)

	list, err := r.Receipts(ctx, receipt.Filter{Type: models.ReceiptTypeSalary})
	require.NoError(t, err)
	require.Len(t, list, 1)

	got, err := r.Receipt(ctx, rc.ID)
	require.NoError(t, err)
	assert.Equal(t, "June", got.Notes)

	again, err := r.IssueReceipt(ctx, e.ID, models.ReceiptTypeSalary, nil, "June again")
	require.NoError(t, err)
	assert.Equal(t, receipt.Number(clock)+"-2", again.Number, "same clock tick gets a distinct number")
}

func TestRemove(t *testing.T) {
	r, _ := setupRoster(t)
	ctx := context.Background()

	e, err := r.Create(ctx, johnDoe())
	require.NoError(t, err)
	require.NoError(t, r.Remove(ctx, e.ID))

	_, err = r.Get(ctx, e.ID)
	assert.ErrorIs(t, err, store.ErrEmployeeNotFound)
	assert.ErrorIs(t, r.Remove(ctx, e.ID), store.ErrEmployeeNotFound)
}

func TestUpsert_NormalizesAndRefreshes(t *testing.T) {
	r, _ := setupRoster(t)
	ctx := context.Background()

	e := models.Employee{
		ID:          uuid.New(),
		EmployeeID:  "EMP003",
		Name:        "Ali Khan",
		BasicSalary: decimal.NewFromInt(20000),
		Advances: []models.LedgerEntry{
			{ID: uuid.New(), OriginalAmount: decimal.NewFromInt(500), Deduction: decimal.NewFromInt(800)},
		},
		NetSalary: decimal.NewFromInt(999999),
	}
	saved, err := r.Upsert(ctx, e)
	require.NoError(t, err)

	assert.True(t, saved.Advances[0].Deduction.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 1, saved.Advances[0].Installments)
	assert.True(t, saved.NetSalary.Equal(decimal.NewFromInt(19500)))
	assert.True(t, e.Advances[0].Deduction.Equal(decimal.NewFromInt(800)), "caller's slice is not modified")

	saved.Commission = decimal.NewFromInt(1000)
	again, err := r.Upsert(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, again.CreatedAt)
	assert.True(t, again.NetSalary.Equal(decimal.NewFromInt(20500)))

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestLegacyEntryIDsStayUniqueInEveryStore(t *testing.T) {
	sqlite, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "roster.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	stores := map[string]store.Storage{
		"memory": store.NewMemoryStore(),
		"sqlite": sqlite,
	}
	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			r := NewRoster(s, zap.NewNop()).WithClock(func() time.Time { return clock })
			ctx := context.Background()

			in := johnDoe()
			in.Advances = []models.LedgerEntryInput{
				{ID: 1, OriginalAmount: 100},
				{ID: 1, OriginalAmount: 200},
			}
			in.Loans = []models.LedgerEntryInput{{ID: 1, OriginalAmount: 300}}

			e, err := r.Create(ctx, in)
			require.NoError(t, err)

			ids := map[uuid.UUID]bool{}
			for _, entry := range append(e.Advances, e.Loans...) {
				ids[entry.ID] = true
			}
			assert.Len(t, ids, 3)

			second := e.Advances[1].ID
			e, err = r.UpdateEntry(ctx, e.ID, models.LedgerKindAdvance, second, ledger.FieldDeduction, "50")
			require.NoError(t, err)
			assert.True(t, e.Advances[0].Deduction.IsZero())
			assert.True(t, e.Advances[1].Deduction.Equal(decimal.NewFromInt(50)))

			dup := e
			dup.Loans = []models.LedgerEntry{e.Advances[0]}
			saved, err := r.Upsert(ctx, dup)
			require.NoError(t, err)
			assert.NotEqual(t, saved.Advances[0].ID, saved.Loans[0].ID)
		})
	}
}
