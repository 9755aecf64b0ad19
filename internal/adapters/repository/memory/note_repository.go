package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/ogurasousui/codex-crm/internal/core/note"
)

// NoteRepository は Store 上のノートリポジトリです。
type NoteRepository struct {
	store *Store
}

var _ note.Repository = (*NoteRepository)(nil)

// Create はノートを新規作成します。
func (r *NoteRepository) Create(ctx context.Context, n *note.Note) (*note.Note, error) {
	var created note.Note
	err := r.store.write(ctx, func(st *state) error {
		if _, ok := st.customers[n.CustomerID]; !ok {
			return note.ErrCustomerNotFound
		}
		if _, ok := st.employees[n.EmployeeID]; !ok {
			return note.ErrEmployeeNotFound
		}
		created = *n
		st.notes[n.ID] = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update はノートの内容・日付・種別を更新します。
func (r *NoteRepository) Update(ctx context.Context, n *note.Note) (*note.Note, error) {
	var updated note.Note
	err := r.store.write(ctx, func(st *state) error {
		current, ok := st.notes[n.ID]
		if !ok {
			return note.ErrNoteNotFound
		}
		current.Content = n.Content
		current.Date = n.Date
		current.InteractionType = n.InteractionType
		current.UpdatedAt = n.UpdatedAt
		st.notes[n.ID] = current
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete はノートを削除します。
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	return r.store.write(ctx, func(st *state) error {
		if _, ok := st.notes[id]; !ok {
			return note.ErrNoteNotFound
		}
		delete(st.notes, id)
		return nil
	})
}

// FindByID は ID でノートを取得します。
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*note.Note, error) {
	var found note.Note
	err := r.store.read(ctx, func(st *state) error {
		n, ok := st.notes[id]
		if !ok {
			return note.ErrNoteNotFound
		}
		found = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

// List はノートを日付の新しい順に取得します。
func (r *NoteRepository) List(ctx context.Context, filter note.ListNotesFilter) ([]*note.Note, string, error) {
	if filter.Limit <= 0 {
		return nil, "", note.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", note.ErrInvalidPageToken
	}

	var matched []*note.Note
	err := r.store.read(ctx, func(st *state) error {
		for _, n := range st.notes {
			if filter.CustomerID != "" && n.CustomerID != filter.CustomerID {
				continue
			}
			if filter.EmployeeID != "" && n.EmployeeID != filter.EmployeeID {
				continue
			}
			matched = append(matched, n.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	slices.SortFunc(matched, func(a, b *note.Note) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	items, next := page(matched, filter.Limit, filter.Offset)
	return items, next, nil
}

// CustomerOwner は顧客の担当社員 ID を返します。
func (r *NoteRepository) CustomerOwner(ctx context.Context, customerID string) (string, error) {
	var owner string
	err := r.store.read(ctx, func(st *state) error {
		c, ok := st.customers[customerID]
		if !ok {
			return note.ErrCustomerNotFound
		}
		owner = c.EmployeeID
		return nil
	})
	return owner, err
}

// EmployeeExists は社員が存在するかを返します。
func (r *NoteRepository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	var exists bool
	err := r.store.read(ctx, func(st *state) error {
		_, exists = st.employees[employeeID]
		return nil
	})
	return exists, err
}

// CountByEmployee は社員が記録者となっているノート数を返します。
func (r *NoteRepository) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	var count int
	err := r.store.read(ctx, func(st *state) error {
		for _, n := range st.notes {
			if n.EmployeeID == employeeID {
				count++
			}
		}
		return nil
	})
	return count, err
}

// ReassignAll は記録者を一括で付け替え、更新件数を返します。
func (r *NoteRepository) ReassignAll(ctx context.Context, fromEmployeeID, toEmployeeID string, at time.Time) (int, error) {
	var count int
	err := r.store.write(ctx, func(st *state) error {
		var ids []string
		for id, n := range st.notes {
			if n.EmployeeID == fromEmployeeID {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return nil
		}
		if _, ok := st.employees[toEmployeeID]; !ok {
			return note.ErrEmployeeNotFound
		}
		for _, id := range ids {
			n := st.notes[id]
			n.EmployeeID = toEmployeeID
			n.UpdatedAt = at
			st.notes[id] = n
		}
		count = len(ids)
		return nil
	})
	return count, err
}
