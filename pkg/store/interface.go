package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mcclellann/fredPayroll/pkg/models"
)

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrReceiptNotFound     = errors.New("receipt not found")
	ErrDuplicateEmployeeID = errors.New("employee id already in use")
)

// Storage persists employees, with their advances and loans, and issued
// receipts. UpsertEmployee replaces the whole record, ledgers included.
type Storage interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (models.Employee, error)
	GetEmployeeByCode(ctx context.Context, employeeID string) (models.Employee, error)
	UpsertEmployee(ctx context.Context, e models.Employee) error
	DeleteEmployee(ctx context.Context, id uuid.UUID) error

	CreateReceipt(ctx context.Context, r models.Receipt) error
	GetReceipt(ctx context.Context, id uuid.UUID) (models.Receipt, error)
	ListReceipts(ctx context.Context) ([]models.Receipt, error)

	Close() error
}
