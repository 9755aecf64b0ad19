package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/ogurasousui/codex-crm/internal/core/employee"
)

// EmployeeRepository は Store 上の社員リポジトリです。
type EmployeeRepository struct {
	store *Store
}

var _ employee.Repository = (*EmployeeRepository)(nil)

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	var created employee.Employee
	err := r.store.write(ctx, func(st *state) error {
		if emailTaken(st, e.Email, "") {
			return employee.ErrEmailAlreadyExists
		}
		created = *e
		st.employees[e.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update は社員情報を更新します。作成日時は保持します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	var updated employee.Employee
	err := r.store.write(ctx, func(st *state) error {
		current, ok := st.employees[e.ID]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		if emailTaken(st, e.Email, e.ID) {
			return employee.ErrEmailAlreadyExists
		}
		updated = *e
		updated.CreatedAt = current.CreatedAt
		st.employees[e.ID] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.employees[id]; !ok {
			return employee.ErrEmployeeNotFound
		}
		if employeeAssigned(st, id) {
			return employee.ErrEmployeeReferenced
		}
		delete(st.employees, id)
		return nil
	})
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	var found employee.Employee
	err := r.store.read(ctx, func(st *state) error {
		e, ok := st.employees[id]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		found = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// FindByEmail はメールアドレスで社員を取得します。
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	var found *employee.Employee
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.employees {
			if e.Email == email {
				found = e.Clone()
				return nil
			}
		}
		return employee.ErrEmployeeNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Exists は社員が存在するかを返します。
func (r *EmployeeRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.store.read(ctx, func(st *state) error {
		_, exists = st.employees[id]
		return nil
	})
	return exists, err
}

// HasAssignments は社員が担当する顧客またはノートが残っているかを返します。
func (r *EmployeeRepository) HasAssignments(ctx context.Context, id string) (bool, error) {
	var assigned bool
	err := r.store.read(ctx, func(st *state) error {
		assigned = employeeAssigned(st, id)
		return nil
	})
	return assigned, err
}

// List は社員の一覧を作成日時順に取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	var matched []*employee.Employee
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.employees {
			if filter.Search != "" && !containsFold(e.FirstName, filter.Search) && !containsFold(e.Department, filter.Search) {
				continue
			}
			matched = append(matched, e.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	slices.SortFunc(matched, func(a, b *employee.Employee) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	items, next := page(matched, filter.Limit, filter.Offset)
	return items, next, nil
}

// ListDepartments は登録済みの部署名を重複なく昇順で返します。
func (r *EmployeeRepository) ListDepartments(ctx context.Context) ([]string, error) {
	departments := []string{}
	err := r.store.read(ctx, func(st *state) error {
		for _, e := range st.employees {
			departments = append(departments, e.Department)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(departments)
	return slices.Compact(departments), nil
}

func emailTaken(st *state, email, exceptID string) bool {
	for id, e := range st.employees {
		if id != exceptID && e.Email == email {
			return true
		}
	}
	return false
}

func employeeAssigned(st *state, id string) bool {
	for _, c := range st.customers {
		if c.EmployeeID == id {
			return true
		}
	}
	for _, n := range st.notes {
		if n.EmployeeID == id {
			return true
		}
	}
	return false
}
