package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	pgdb "github.com/ogurasousui/codex-crm/internal/platform/db/postgres"
)

const noteColumns = `id, content, note_date, interaction_type, customer_id, employee_id, created_at, updated_at`

// NoteRepository は PostgreSQL を利用したノート永続化の実装です。
type NoteRepository struct {
	pool pgdb.Queryer
}

var _ note.Repository = (*NoteRepository)(nil)

// NewNoteRepository は NoteRepository を生成します。
func NewNoteRepository(pool pgdb.Queryer) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create はノートを新規作成します。
func (r *NoteRepository) Create(ctx context.Context, n *note.Note) (*note.Note, error) {
	if !validID(n.CustomerID) {
		return nil, note.ErrCustomerNotFound
	}
	if !validID(n.EmployeeID) {
		return nil, note.ErrEmployeeNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO notes (id, content, note_date, interaction_type, customer_id, employee_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+noteColumns,
		n.ID,
		n.Content,
		nullableDate(&n.Date),
		string(n.InteractionType),
		n.CustomerID,
		n.EmployeeID,
		n.CreatedAt,
		n.UpdatedAt,
	)

	created, err := scanNote(row)
	if err != nil {
		return nil, translateNotePgError(err)
	}
	return created, nil
}

// Update はノートの内容・日付・種別を更新します。
func (r *NoteRepository) Update(ctx context.Context, n *note.Note) (*note.Note, error) {
	if !validID(n.ID) {
		return nil, note.ErrNoteNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE notes
           SET content = $1,
               note_date = $2,
               interaction_type = $3,
               updated_at = $4
         WHERE id = $5
        RETURNING `+noteColumns,
		n.Content,
		nullableDate(&n.Date),
		string(n.InteractionType),
		n.UpdatedAt,
		n.ID,
	)

	updated, err := scanNote(row)
	if err != nil {
		return nil, translateNotePgError(err)
	}
	return updated, nil
}

// Delete はノートを削除します。
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return note.ErrNoteNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return translateNotePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return note.ErrNoteNotFound
	}
	return nil
}

// FindByID は ID でノートを取得します。
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*note.Note, error) {
	if !validID(id) {
		return nil, note.ErrNoteNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)

	found, err := scanNote(row)
	if err != nil {
		return nil, translateNotePgError(err)
	}
	return found, nil
}

// List はノートを日付の新しい順に取得します。
func (r *NoteRepository) List(ctx context.Context, filter note.ListNotesFilter) ([]*note.Note, string, error) {
	if filter.Limit <= 0 {
		return nil, "", note.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", note.ErrInvalidPageToken
	}

	var (
		q          queryArgs
		conditions []string
	)
	if (filter.CustomerID != "" && !validID(filter.CustomerID)) || (filter.EmployeeID != "" && !validID(filter.EmployeeID)) {
		return []*note.Note{}, "", nil
	}
	if filter.CustomerID != "" {
		conditions = append(conditions, "customer_id = "+q.add(filter.CustomerID))
	}
	if filter.EmployeeID != "" {
		conditions = append(conditions, "employee_id = "+q.add(filter.EmployeeID))
	}
	limit := q.add(filter.Limit + 1)
	offset := q.add(filter.Offset)

	query := `
        SELECT ` + noteColumns + `
          FROM notes` + whereClause(conditions) + `
         ORDER BY note_date DESC, id
         LIMIT ` + limit + `
        OFFSET ` + offset

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, q.args...)
	if err != nil {
		return nil, "", translateNotePgError(err)
	}
	defer rows.Close()

	notes := make([]*note.Note, 0, filter.Limit+1)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, "", translateNotePgError(err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateNotePgError(err)
	}

	notes, next := trimPage(notes, filter.Limit, filter.Offset)
	return notes, next, nil
}

// CustomerOwner は顧客の担当社員 ID を返します。
func (r *NoteRepository) CustomerOwner(ctx context.Context, customerID string) (string, error) {
	if !validID(customerID) {
		return "", note.ErrCustomerNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var owner string
	if err := exec.QueryRow(ctx, `SELECT employee_id FROM customers WHERE id = $1`, customerID).Scan(&owner); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", note.ErrCustomerNotFound
		}
		return "", err
	}
	return owner, nil
}

// EmployeeExists は社員が存在するかを返します。
func (r *NoteRepository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
	if !validID(employeeID) {
		return false, nil
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, employeeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CountByEmployee は社員が記録者となっているノート数を返します。
func (r *NoteRepository) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	if !validID(employeeID) {
		return 0, nil
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM notes WHERE employee_id = $1`, employeeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ReassignAll は記録者を一括で付け替え、更新件数を返します。
func (r *NoteRepository) ReassignAll(ctx context.Context, fromEmployeeID, toEmployeeID string, at time.Time) (int, error) {
	if !validID(toEmployeeID) {
		return 0, note.ErrEmployeeNotFound
	}
	if !validID(fromEmployeeID) {
		return 0, nil
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE notes
           SET employee_id = $1,
               updated_at = $2
         WHERE employee_id = $3
    `, toEmployeeID, at, fromEmployeeID)
	if err != nil {
		return 0, translateNotePgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanNote(row pgx.Row) (*note.Note, error) {
	var (
		n               note.Note
		interactionType string
	)
	if err := row.Scan(
		&n.ID,
		&n.Content,
		&n.Date,
		&interactionType,
		&n.CustomerID,
		&n.EmployeeID,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, note.ErrNoteNotFound
		}
		return nil, err
	}
	n.Date = n.Date.UTC()
	n.InteractionType = note.InteractionType(interactionType)
	return &n, nil
}

func translateNotePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return note.ErrNoteNotFound
	}

	if pgErr, ok := asPgError(err); ok {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "notes_customer_id_fkey":
				return note.ErrCustomerNotFound
			case "notes_employee_id_fkey":
				return note.ErrEmployeeNotFound
			}
		case invalidTextRepresentation:
			return note.ErrNoteNotFound
		}
	}

	return err
}
