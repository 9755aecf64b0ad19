package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/ogurasousui/codex-crm/internal/core/customer"
)

// CustomerRepository は Store 上の顧客リポジトリです。
type CustomerRepository struct {
	store *Store
}

var _ customer.Repository = (*CustomerRepository)(nil)

// Create は顧客を新規作成します。
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	var created *customer.Customer
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.employees[c.EmployeeID]; !ok {
			return customer.ErrEmployeeNotFound
		}
		if customerEmailTaken(st, c.Email, "") {
			return customer.ErrEmailAlreadyExists
		}
		created = c.Clone()
		st.customers[c.ID] = *created.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update は担当社員以外の顧客情報を更新します。
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	var updated *customer.Customer
	err := r.store.write(ctx, func(st *state) error {
		current, ok := st.customers[c.ID]
		if !ok {
			return customer.ErrCustomerNotFound
		}
		if customerEmailTaken(st, c.Email, c.ID) {
			return customer.ErrEmailAlreadyExists
		}
		updated = c.Clone()
		updated.EmployeeID = current.EmployeeID
		updated.CreatedAt = current.CreatedAt
		st.customers[c.ID] = *updated.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete は顧客を削除します。
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.customers[id]; !ok {
			return customer.ErrCustomerNotFound
		}
		if customerHasNotes(st, id) {
			return customer.ErrCustomerReferenced
		}
		delete(st.customers, id)
		return nil
	})
}

// FindByID は ID で顧客を取得します。
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	var found *customer.Customer
	err := r.store.read(ctx, func(st *state) error {
		c, ok := st.customers[id]
		if !ok {
			return customer.ErrCustomerNotFound
		}
		found = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindByEmail はメールアドレスで顧客を取得します。
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	var found *customer.Customer
	err := r.store.read(ctx, func(st *state) error {
		for _, c := range st.customers {
			if c.Email == email {
				found = c.Clone()
				return nil
			}
		}
		return customer.ErrCustomerNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// List は顧客の一覧を作成日時順に取得します。
func (r *CustomerRepository) List(ctx context.Context, filter customer.ListCustomersFilter) ([]*customer.Customer, string, error) {
	if filter.Limit <= 0 {
		return nil, "", customer.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", customer.ErrInvalidPageToken
	}

	var matched []*customer.Customer
	err := r.store.read(ctx, func(st *state) error {
		for _, c := range st.customers {
			if filter.EmployeeID != "" && c.EmployeeID != filter.EmployeeID {
				continue
			}
			if filter.Search != "" && !containsFold(c.FirstName, filter.Search) && !containsFold(c.Email, filter.Search) {
				continue
			}
			matched = append(matched, c.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	slices.SortFunc(matched, func(a, b *customer.Customer) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	items, next := page(matched, filter.Limit, filter.Offset)
	return items, next, nil
}

// EmployeeExists は担当社員として指定された社員が存在するかを返します。
func (r *CustomerRepository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	err := r.store.read(ctx, func(st *state) error {
		_, exists = st.employees[employeeID]
		return nil
	})
	return exists, err
}

// HasNotes は顧客にノートが残っているかを返します。
func (r *CustomerRepository) HasNotes(ctx context.Context, id string) (bool, error) {
	var has bool
	err := r.store.read(ctx, func(st *state) error {
		has = customerHasNotes(st, id)
		return nil
	})
	return has, err
}

// CountByEmployee は社員が担当する顧客数を返します。
func (r *CustomerRepository) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	var count int
	err := r.store.read(ctx, func(st *state) error {
		for _, c := range st.customers {
			if c.EmployeeID == employeeID {
				count++
			}
		}
		return nil
	})
	return count, err
}

// Reassign は顧客 1 件の担当社員を変更します。
func (r *CustomerRepository) Reassign(ctx context.Context, customerID, employeeID string, at time.Time) (*customer.Customer, error) {
	var updated *customer.Customer
	err := r.store.write(ctx, func(st *state) error {
		c, ok := st.customers[customerID]
		if !ok {
			return customer.ErrCustomerNotFound
		}
		if _, ok := st.employees[employeeID]; !ok {
			return customer.ErrEmployeeNotFound
		}
		c.EmployeeID = employeeID
		c.UpdatedAt = at
		st.customers[customerID] = c
		updated = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReassignAll は担当社員を一括で付け替え、更新件数を返します。
func (r *CustomerRepository) ReassignAll(ctx context.Context, fromEmployeeID, toEmployeeID string, at time.Time) (int, error) {
	var count int
	err := r.store.write(ctx, func(st *state) error {
		var ids []string
		for id, c := range st.customers {
			if c.EmployeeID == fromEmployeeID {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		if _, ok := st.employees[toEmployeeID]; !ok {
			return customer.ErrEmployeeNotFound
		}
		for _, id := range ids {
			c := st.customers[id]
			c.EmployeeID = toEmployeeID
			c.UpdatedAt = at
			st.customers[id] = c
		}
		count = len(ids)
		return nil
	})
	return count, err
}

func customerEmailTaken(st *state, email, exceptID string) bool {
	for id, c := range st.customers {
		if id != exceptID && c.Email == email {
			return true
		}
	}
	return false
}

func customerHasNotes(st *state, id string) bool {
	for _, n := range st.notes {
		if n.CustomerID == id {
			return true
		}
	}
	return false
}
