package orchestrator

import (
	"context"
	"time"

	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/note"
)

// EmployeeStore はワークフローが必要とする社員の永続化操作です。
type EmployeeStore interface {
	FindByID(ctx context.Context, id string) (*employee.Employee, error)
	Exists(ctx context.Context, id string) (bool, error)
	HasAssignments(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// CustomerStore はワークフローが必要とする顧客の永続化操作です。
type CustomerStore interface {
	FindByID(ctx context.Context, id string) (*customer.Customer, error)
	CountByEmployee(ctx context.Context, employeeID string) (int, error)
	Reassign(ctx context.Context, customerID, employeeID string, at time.Time) (*customer.Customer, error)
	ReassignAll(ctx context.Context, fromEmployeeID, toEmployeeID string, at time.Time) (int, error)
}

// NoteStore はワークフローが必要とするノートの永続化操作です。
type NoteStore interface {
	CountByEmployee(ctx context.Context, employeeID string) (int, error)
	ReassignAll(ctx context.Context, fromEmployeeID, toEmployeeID string, at time.Time) (int, error)
}

// Archiver は無効化社員の履歴を扱います。
type Archiver interface {
	ArchiveEmployee(ctx context.Context, in inactive.ArchiveEmployeeInput) (*inactive.InactiveEmployee, error)
	GetByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (*inactive.InactiveEmployee, error)
	ExistsByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (bool, error)
	RecordReassignment(ctx context.Context, in inactive.RecordReassignmentInput) (*inactive.InactiveEmployee, error)
}

// CustomerCreator は検証付きで顧客を作成します。
type CustomerCreator interface {
	CreateCustomer(ctx context.Context, req customer.Request) (*customer.Customer, error)
}

// NoteCreator は検証付きでノートを作成します。
type NoteCreator interface {
	CreateNote(ctx context.Context, req note.Request) (*note.Note, error)
}

var (
	_ EmployeeStore   = (employee.Repository)(nil)
	_ CustomerStore   = (customer.Repository)(nil)
	_ NoteStore       = (note.Repository)(nil)
	_ Archiver        = (*inactive.Service)(nil)
	_ CustomerCreator = (*customer.Service)(nil)
	_ NoteCreator     = (*note.Service)(nil)
)
