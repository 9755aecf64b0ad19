package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	pgdb "github.com/ogurasousui/codex-crm/internal/platform/db/postgres"
)

const inactiveColumns = `id, original_employee_id, first_name, last_name, email, department,
               replacement_employee_id, reassigned_customers, reassigned_notes, deactivated_at`

// InactiveEmployeeRepository は PostgreSQL を利用した無効化社員履歴の実装です。
type InactiveEmployeeRepository struct {
	pool pgdb.Queryer
}

var _ inactive.Repository = (*InactiveEmployeeRepository)(nil)

// NewInactiveEmployeeRepository は InactiveEmployeeRepository を生成します。
func NewInactiveEmployeeRepository(pool pgdb.Queryer) *InactiveEmployeeRepository {
	return &InactiveEmployeeRepository{pool: pool}
}

// Create は履歴を作成します。
func (r *InactiveEmployeeRepository) Create(ctx context.Context, e *inactive.InactiveEmployee) (*inactive.InactiveEmployee, error) {
	if !validID(e.OriginalEmployeeID) || (e.ReplacementEmployeeID != "" && !validID(e.ReplacementEmployeeID)) {
		return nil, inactive.ErrInvalidID
	}
	var replacement any
	if e.ReplacementEmployeeID != "" {
		replacement = e.ReplacementEmployeeID
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO inactive_employees (id, original_employee_id, first_name, last_name, email, department,
                                        replacement_employee_id, reassigned_customers, reassigned_notes, deactivated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+inactiveColumns,
		e.ID,
		e.OriginalEmployeeID,
		e.FirstName,
		e.LastName,
		e.Email,
		e.Department,
		replacement,
		e.ReassignedCustomers,
		e.ReassignedNotes,
		e.DeactivatedAt,
	)

	created, err := scanInactiveEmployee(row)
	if err != nil {
		return nil, translateInactivePgError(err)
	}
	return created, nil
}

// FindByID は ID で履歴を取得します。
func (r *InactiveEmployeeRepository) FindByID(ctx context.Context, id string) (*inactive.InactiveEmployee, error) {
	if !validID(id) {
		return nil, inactive.ErrInactiveNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+inactiveColumns+` FROM inactive_employees WHERE id = $1`, id)

	found, err := scanInactiveEmployee(row)
	if err != nil {
		return nil, translateInactivePgError(err)
	}
	return found, nil
}

// FindByOriginalEmployeeID は元の社員 ID で履歴を取得します。
func (r *InactiveEmployeeRepository) FindByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (*inactive.InactiveEmployee, error) {
	if !validID(originalEmployeeID) {
		return nil, inactive.ErrInactiveNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+inactiveColumns+` FROM inactive_employees WHERE original_employee_id = $1`, originalEmployeeID)

	found, err := scanInactiveEmployee(row)
	if err != nil {
		return nil, translateInactivePgError(err)
	}
	return found, nil
}

// ExistsByOriginalEmployeeID は元の社員 ID の履歴が存在するかを返します。
func (r *InactiveEmployeeRepository) ExistsByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (bool, error) {
	if !validID(originalEmployeeID) {
		return false, nil
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inactive_employees WHERE original_employee_id = $1)`, originalEmployeeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List は履歴を無効化日時の新しい順に取得します。
func (r *InactiveEmployeeRepository) List(ctx context.Context, filter inactive.ListFilter) ([]*inactive.InactiveEmployee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", inactive.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", inactive.ErrInvalidPageToken
	}

	var (
		q          queryArgs
		conditions []string
	)
	if filter.Department != "" {
		conditions = append(conditions, "department = "+q.add(filter.Department))
	}
	limit := q.add(filter.Limit + 1)
	offset := q.add(filter.Offset)

	query := `
        SELECT ` + inactiveColumns + `
          FROM inactive_employees` + whereClause(conditions) + `
         ORDER BY deactivated_at DESC, id
         LIMIT ` + limit + `
        OFFSET ` + offset

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, q.args...)
	if err != nil {
		return nil, "", translateInactivePgError(err)
	}
	defer rows.Close()

	records := make([]*inactive.InactiveEmployee, 0, filter.Limit+1)
	for rows.Next() {
		rec, err := scanInactiveEmployee(rows)
		if err != nil {
			return nil, "", translateInactivePgError(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateInactivePgError(err)
	}

	records, next := trimPage(records, filter.Limit, filter.Offset)
	return records, next, nil
}

// AddReassignments は引き継ぎ件数を加算します。
func (r *InactiveEmployeeRepository) AddReassignments(ctx context.Context, originalEmployeeID string, customers, notes int) (*inactive.InactiveEmployee, error) {
	if !validID(originalEmployeeID) {
		return nil, inactive.ErrInactiveNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE inactive_employees
           SET reassigned_customers = reassigned_customers + $1,
               reassigned_notes = reassigned_notes + $2
         WHERE original_employee_id = $3
        RETURNING `+inactiveColumns,
		customers, notes, originalEmployeeID,
	)

	updated, err := scanInactiveEmployee(row)
	if err != nil {
		return nil, translateInactivePgError(err)
	}
	return updated, nil
}

func scanInactiveEmployee(row pgx.Row) (*inactive.InactiveEmployee, error) {
	var (
		e           inactive.InactiveEmployee
		replacement sql.NullString
	)
	if err := row.Scan(
		&e.ID,
		&e.OriginalEmployeeID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&e.Department,
		&replacement,
		&e.ReassignedCustomers,
		&e.ReassignedNotes,
		&e.DeactivatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inactive.ErrInactiveNotFound
		}
		return nil, err
	}
	e.ReplacementEmployeeID = replacement.String
	return &e, nil
}

func translateInactivePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return inactive.ErrInactiveNotFound
	}
	if pgErr, ok := asPgError(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			return inactive.ErrAlreadyArchived
		case checkViolationCode:
			return inactive.ErrInvalidReassignCount
		case invalidTextRepresentation:
			return inactive.ErrInactiveNotFound
		}
	}
	return err
}
