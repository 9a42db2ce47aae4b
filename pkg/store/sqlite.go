package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/mcclellann/fredPayroll/pkg/models"
)

// SQLiteStore manages the database connection and operations for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database and initializes the schema.
func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	if dataSourceName == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err = db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err = db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the tables if they don't already exist and adds columns
// introduced after the first release. Money is stored as TEXT so no precision
// is lost.
func (s *SQLiteStore) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		job_title TEXT NOT NULL DEFAULT '',
		cnic TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		joining_date DATETIME,
		basic_salary TEXT NOT NULL DEFAULT '0',
		commission TEXT NOT NULL DEFAULT '0',
		net_salary TEXT NOT NULL DEFAULT '0',
		remaining_advance TEXT NOT NULL DEFAULT '0',
		remaining_loan TEXT NOT NULL DEFAULT '0',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS ledger_entries (
		id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		position INTEGER NOT NULL,
		original_amount TEXT NOT NULL,
		entry_date DATETIME,
		reason TEXT NOT NULL DEFAULT '',
		deduction TEXT NOT NULL,
		remaining_amount TEXT NOT NULL,
		PRIMARY KEY (employee_id, id),
		FOREIGN KEY(employee_id) REFERENCES employees(id)
	);
	CREATE TABLE IF NOT EXISTS receipts (
		id TEXT PRIMARY KEY,
		number TEXT NOT NULL,
		employee_ref TEXT NOT NULL,
		employee_code TEXT NOT NULL,
		employee_name TEXT NOT NULL,
		type TEXT NOT NULL,
		items TEXT NOT NULL,
		total TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		issued_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_receipts_issued_at ON receipts(issued_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	migrations := []struct{ table, column string }{
		{"employees", "overtime TEXT NOT NULL DEFAULT '0'"},
		{"ledger_entries", "installments INTEGER NOT NULL DEFAULT 1"},
	}
	for _, m := range migrations {
		_, err := s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", m.table, m.column))
		if err != nil && !isDuplicateColumnError(err) {
			return fmt.Errorf("failed to add column %s.%s: %w", m.table, m.column, err)
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "duplicate column name")
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

const employeeColumns = `id, employee_id, name, location, job_title, cnic, phone_number, joining_date, basic_salary, commission, overtime, net_salary, remaining_advance, remaining_loan, created_at, updated_at`

// UpsertEmployee writes e and replaces its ledger entries in one transaction.
func (s *SQLiteStore) UpsertEmployee(ctx context.Context, e models.Employee) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			name = excluded.name,
			location = excluded.location,
			job_title = excluded.job_title,
			cnic = excluded.cnic,
			phone_number = excluded.phone_number,
			joining_date = excluded.joining_date,
			basic_salary = excluded.basic_salary,
			commission = excluded.commission,
			overtime = excluded.overtime,
			net_salary = excluded.net_salary,
			remaining_advance = excluded.remaining_advance,
			remaining_loan = excluded.remaining_loan,
			updated_at = excluded.updated_at`,
		e.ID.String(), e.EmployeeID, e.Name, e.Location, e.JobTitle, e.CNIC, e.PhoneNumber, nullTime(e.JoiningDate),
		e.BasicSalary, e.Commission, e.Overtime, e.NetSalary, e.RemainingAdvance, e.RemainingLoan, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateEmployeeID, e.EmployeeID)
		}
		return fmt.Errorf("failed to upsert employee: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE employee_id = ?`, e.ID.String()); err != nil {
		return fmt.Errorf("failed to clear ledger entries: %w", err)
	}

	insert := func(kind models.LedgerKind, entries []models.LedgerEntry) error {
		for pos, le := range entries {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO ledger_entries (id, employee_id, kind, position, original_amount, entry_date, reason, deduction, remaining_amount, installments)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				le.ID.String(), e.ID.String(), string(kind), pos, le.OriginalAmount, nullTime(le.Date), le.Reason, le.Deduction, le.RemainingAmount, le.Installments,
			)
			if err != nil {
				return fmt.Errorf("failed to insert %s %s: %w", kind, le.ID, err)
			}
		}
		return nil
	}
	if err := insert(models.LedgerKindAdvance, e.Advances); err != nil {
		return err
	}
	if err := insert(models.LedgerKindLoan, e.Loans); err != nil {
		return err
	}

	return tx.Commit()
}

// GetEmployee retrieves an employee, with ledgers, by its ID.
func (s *SQLiteStore) GetEmployee(ctx context.Context, id uuid.UUID) (models.Employee, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id.String())
	return s.getEmployee(ctx, row)
}

// GetEmployeeByCode retrieves an employee by its human-facing code.
func (s *SQLiteStore) GetEmployeeByCode(ctx context.Context, employeeID string) (models.Employee, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = ?`, employeeID)
	return s.getEmployee(ctx, row)
}

func (s *SQLiteStore) getEmployee(ctx context.Context, row *sql.Row) (models.Employee, error) {
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Employee{}, ErrEmployeeNotFound
		}
		return models.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	entries, err := s.ledgerEntries(ctx, `WHERE employee_id = ?`, e.ID.String())
	if err != nil {
		return models.Employee{}, err
	}
	attach(&e, entries[e.ID])
	return e, nil
}

// ListEmployees retrieves all employees in creation order.
func (s *SQLiteStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at, employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}

	entries, err := s.ledgerEntries(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range employees {
		attach(&employees[i], entries[employees[i].ID])
	}
	return employees, nil
}

// DeleteEmployee removes an employee and its ledger entries. Issued receipts
// are snapshots and stay.
func (s *SQLiteStore) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM ledger_entries WHERE employee_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete ledger entries: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEmployeeNotFound
	}

	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row scanner) (models.Employee, error) {
	var e models.Employee
	var idStr string
	var joining sql.NullTime
	err := row.Scan(&idStr, &e.EmployeeID, &e.Name, &e.Location, &e.JobTitle, &e.CNIC, &e.PhoneNumber, &joining,
		&e.BasicSalary, &e.Commission, &e.Overtime, &e.NetSalary, &e.RemainingAdvance, &e.RemainingLoan, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return e, err
	}
	if e.ID, err = uuid.Parse(idStr); err != nil {
		return e, fmt.Errorf("invalid employee id %q: %w", idStr, err)
	}
	if joining.Valid {
		e.JoiningDate = joining.Time
	}
	e.Advances = []models.LedgerEntry{}
	e.Loans = []models.LedgerEntry{}
	return e, nil
}

type kindEntry struct {
	kind  models.LedgerKind
	entry models.LedgerEntry
}

func (s *SQLiteStore) ledgerEntries(ctx context.Context, where string, args ...any) (map[uuid.UUID][]kindEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, kind, original_amount, entry_date, reason, deduction, remaining_amount, installments
		FROM ledger_entries `+where+` ORDER BY employee_id, kind, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]kindEntry)
	for rows.Next() {
		var ke kindEntry
		var idStr, employeeIDStr, kind string
		var date sql.NullTime
		if err := rows.Scan(&idStr, &employeeIDStr, &kind, &ke.entry.OriginalAmount, &date, &ke.entry.Reason,
			&ke.entry.Deduction, &ke.entry.RemainingAmount, &ke.entry.Installments); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		ke.kind = models.LedgerKind(kind)
		ke.entry.ID = uuid.MustParse(idStr)
		if date.Valid {
			ke.entry.Date = date.Time
		}
		employeeID := uuid.MustParse(employeeIDStr)
		out[employeeID] = append(out[employeeID], ke)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for ledger entries: %w", err)
	}
	return out, nil
}

func attach(e *models.Employee, entries []kindEntry) {
	for _, ke := range entries {
		e.SetEntries(ke.kind, append(e.Entries(ke.kind), ke.entry))
	}
}

// CreateReceipt inserts an issued receipt.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, r models.Receipt) error {
	items, err := json.Marshal(r.Items)
	if err != nil {
		return fmt.Errorf("failed to encode receipt items: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO receipts (id, number, employee_ref, employee_code, employee_name, type, items, total, notes, issued_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.Number, r.EmployeeRef.String(), r.EmployeeID, r.EmployeeName, string(r.Type), string(items), r.Total, r.Notes, r.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}
	return nil
}

const receiptColumns = `id, number, employee_ref, employee_code, employee_name, type, items, total, notes, issued_at`

// GetReceipt retrieves a receipt by its ID.
func (s *SQLiteStore) GetReceipt(ctx context.Context, id uuid.UUID) (models.Receipt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = ?`, id.String())
	r, err := scanReceipt(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Receipt{}, ErrReceiptNotFound
		}
		return models.Receipt{}, fmt.Errorf("failed to get receipt: %w", err)
	}
	return r, nil
}

// ListReceipts retrieves all receipts, newest first.
func (s *SQLiteStore) ListReceipts(ctx context.Context) ([]models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+receiptColumns+` FROM receipts ORDER BY issued_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for receipts: %w", err)
	}
	return receipts, nil
}

func scanReceipt(row scanner) (models.Receipt, error) {
	var r models.Receipt
	var idStr, refStr, typ, items string
	if err := row.Scan(&idStr, &r.Number, &refStr, &r.EmployeeID, &r.EmployeeName, &typ, &items, &r.Total, &r.Notes, &r.IssuedAt); err != nil {
		return r, err
	}
	r.ID = uuid.MustParse(idStr)
	r.EmployeeRef = uuid.MustParse(refStr)
	r.Type = models.ReceiptType(typ)
	if err := json.Unmarshal([]byte(items), &r.Items); err != nil {
		return r, fmt.Errorf("failed to decode receipt items: %w", err)
	}
	return r, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
