package note

import (
	"context"
	"time"
)

// Repository はノート永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, note *Note) (*Note, error)
	Update(ctx context.Context, note *Note) (*Note, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Note, error)
	List(ctx context.Context, filter ListNotesFilter) ([]*Note, string, error)
	// CustomerOwner は顧客の担当社員 ID を返します。顧客が存在しない場合は ErrCustomerNotFound です。
	CustomerOwner(ctx context.Context, customerID string) (string, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	CountByEmployee(ctx context.Context, employeeID string) (int, error)
	ReassignAll(ctx context.Context, fromEmployeeID, toEmployeeID string, at time.Time) (int, error)
}

// ListNotesFilter は一覧取得用フィルタです。日付の新しい順に返します。
type ListNotesFilter struct {
	CustomerID string
	EmployeeID string
	Limit      int
	Offset     int
}
