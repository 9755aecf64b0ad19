package employee

import "context"

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	Exists(ctx context.Context, id string) (bool, error)
	// HasAssignments は社員が担当する顧客またはノートが残っているかを返します。
	HasAssignments(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
	ListDepartments(ctx context.Context) ([]string, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
// Search は名または部署に対する大文字小文字を区別しない部分一致です。
type ListEmployeesFilter struct {
	Search string
	Limit  int
	Offset int
}
