package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/ogurasousui/codex-crm/internal/core/inactive"
)

// InactiveEmployeeRepository は Store 上の無効化社員リポジトリです。
type InactiveEmployeeRepository struct {
	store *Store
}

var _ inactive.Repository = (*InactiveEmployeeRepository)(nil)

// Create は履歴を作成します。元の社員 ID ごとに 1 件までです。
func (r *InactiveEmployeeRepository) Create(ctx context.Context, e *inactive.InactiveEmployee) (*inactive.InactiveEmployee, error) {
	var created inactive.InactiveEmployee
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := findInactiveByOriginal(st, e.OriginalEmployeeID); ok {
			return inactive.ErrAlreadyArchived
		}
		if e.ReassignedCustomers < 0 || e.ReassignedNotes < 0 {
			return inactive.ErrInvalidReassignCount
		}
		created = *e
		st.inactive[e.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// FindByID は ID で履歴を取得します。
func (r *InactiveEmployeeRepository) FindByID(ctx context.Context, id string) (*inactive.InactiveEmployee, error) {
	var found inactive.InactiveEmployee
	err := r.store.read(ctx, func(st *state) error {
		rec, ok := st.inactive[id]
		if !ok {
			return inactive.ErrInactiveNotFound
		}
		found = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// FindByOriginalEmployeeID は元の社員 ID で履歴を取得します。
func (r *InactiveEmployeeRepository) FindByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (*inactive.InactiveEmployee, error) {
	var found inactive.InactiveEmployee
	err := r.store.read(ctx, func(st *state) error {
		rec, ok := findInactiveByOriginal(st, originalEmployeeID)
		if !ok {
			return inactive.ErrInactiveNotFound
		}
		found = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// ExistsByOriginalEmployeeID は元の社員 ID の履歴が存在するかを返します。
func (r *InactiveEmployeeRepository) ExistsByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (bool, error) {
	var exists bool
	err := r.store.read(ctx, func(st *state) error {
		_, exists = findInactiveByOriginal(st, originalEmployeeID)
		return nil
	})
	return exists, err
}

// List は履歴を無効化日時の新しい順に取得します。
func (r *InactiveEmployeeRepository) List(ctx context.Context, filter inactive.ListFilter) ([]*inactive.InactiveEmployee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", inactive.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", inactive.ErrInvalidPageToken
	}

	var matched []*inactive.InactiveEmployee
	err := r.store.read(ctx, func(st *state) error {
		for _, rec := range st.inactive {
			if filter.Department != "" && rec.Department != filter.Department {
				continue
			}
			matched = append(matched, rec.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	slices.SortFunc(matched, func(a, b *inactive.InactiveEmployee) int {
		if c := b.DeactivatedAt.Compare(a.DeactivatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	items, next := page(matched, filter.Limit, filter.Offset)
	return items, next, nil
}

// AddReassignments は引き継ぎ件数を加算します。
func (r *InactiveEmployeeRepository) AddReassignments(ctx context.Context, originalEmployeeID string, customers, notes int) (*inactive.InactiveEmployee, error) {
	var updated inactive.InactiveEmployee
	err := r.store.write(ctx, func(st *state) error {
		rec, ok := findInactiveByOriginal(st, originalEmployeeID)
		if !ok {
			return inactive.ErrInactiveNotFound
		}
		rec.ReassignedCustomers += customers
		rec.ReassignedNotes += notes
		if rec.ReassignedCustomers < 0 || rec.ReassignedNotes < 0 {
			return inactive.ErrInvalidReassignCount
		}
		st.inactive[rec.ID] = rec
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func findInactiveByOriginal(st *state, originalEmployeeID string) (inactive.InactiveEmployee, bool) {
	for _, rec := range st.inactive {
		if rec.OriginalEmployeeID == originalEmployeeID {
			return rec, true
		}
	}
	return inactive.InactiveEmployee{}, false
}
