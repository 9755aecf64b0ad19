package customer

import (
	"context"
	"time"
)

// Repository は顧客永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, customer *Customer) (*Customer, error)
	Update(ctx context.Context, customer *Customer) (*Customer, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context, filter ListCustomersFilter) ([]*Customer, string, error)
	EmployeeExists(ctx context.Context, employeeID string) (bool, error)
	HasNotes(ctx context.Context, id string) (bool, error)
	CountByEmployee(ctx context.Context, employeeID string) (int, error)
	// Reassign は 1 件の顧客の担当社員を変更します。
	Reassign(ctx context.Context, customerID, employeeID string, at time.Time) (*Customer, error)
	// ReassignAll は fromEmployeeID が担当する全顧客を toEmployeeID へ付け替え、件数を返します。
	ReassignAll(ctx context.Context, fromEmployeeID, toEmployeeID string, at time.Time) (int, error)
}

// ListCustomersFilter は一覧取得用フィルタです。
// Search は名またはメールアドレスに対する大文字小文字を区別しない部分一致です。
type ListCustomersFilter struct {
	EmployeeID string
	Search     string
	Limit      int
	Offset     int
}
