package inactive

import "context"

// Repository は無効化社員の永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, record *InactiveEmployee) (*InactiveEmployee, error)
	FindByID(ctx context.Context, id string) (*InactiveEmployee, error)
	FindByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (*InactiveEmployee, error)
	ExistsByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]*InactiveEmployee, string, error)
	// AddReassignments は引き継ぎ件数を加算します。
	AddReassignments(ctx context.Context, originalEmployeeID string, customers, notes int) (*InactiveEmployee, error)
}

// ListFilter は一覧取得用フィルタです。無効化日時の新しい順に返します。
type ListFilter struct {
	Department string
	Limit      int
	Offset     int
}
