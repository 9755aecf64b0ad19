package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/codex-crm/internal/core/customer"
	pgdb "github.com/ogurasousui/codex-crm/internal/platform/db/postgres"
)

const customerColumns = `id, first_name, last_name, email, phone, address, last_interaction_date, employee_id, created_at, updated_at`

// CustomerRepository は PostgreSQL を利用した顧客永続化の実装です。
type CustomerRepository struct {
	pool pgdb.Queryer
}

var _ customer.Repository = (*CustomerRepository)(nil)

// NewCustomerRepository は CustomerRepository を生成します。
func NewCustomerRepository(pool pgdb.Queryer) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create は顧客を新規作成します。
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	if !validID(c.EmployeeID) {
		return nil, customer.ErrEmployeeNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO customers (id, first_name, last_name, email, phone, address, last_interaction_date, employee_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+customerColumns,
		c.ID,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Address,
		nullableDate(c.LastInteractionDate),
		c.EmployeeID,
		c.CreatedAt,
		c.UpdatedAt,
	)

	created, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return created, nil
}

// Update は担当社員以外の顧客情報を更新します。
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	if !validID(c.ID) {
		return nil, customer.ErrCustomerNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE customers
           SET first_name = $1,
               last_name = $2,
               email = $3,
               phone = $4,
               address = $5,
               last_interaction_date = $6,
               updated_at = $7
         WHERE id = $8
        RETURNING `+customerColumns,
		c.FirstName,
		c.LastName,
		c.Email,
		c.Phone,
		c.Address,
		nullableDate(c.LastInteractionDate),
		c.UpdatedAt,
		c.ID,
	)

	updated, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return updated, nil
}

// Delete は顧客を削除します。
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return customer.ErrCustomerNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if pgErr, ok := asPgError(err); ok && pgErr.Code == foreignKeyViolationCode {
			return customer.ErrCustomerReferenced
		}
		return translateCustomerPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}

// FindByID は ID で顧客を取得します。
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	if !validID(id) {
		return nil, customer.ErrCustomerNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)

	found, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスで顧客を取得します。
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)

	found, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return found, nil
}

// List は顧客の一覧を取得します。
func (r *CustomerRepository) List(ctx context.Context, filter customer.ListCustomersFilter) ([]*customer.Customer, string, error) {
	if filter.Limit <= 0 {
		return nil, "", customer.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", customer.ErrInvalidPageToken
	}

	var (
		q          queryArgs
		conditions []string
	)
	if filter.EmployeeID != "" {
		if !validID(filter.EmployeeID) {
			return []*customer.Customer{}, "", nil
		}
		conditions = append(conditions, "employee_id = "+q.add(filter.EmployeeID))
	}
	if filter.Search != "" {
		p := q.add(likePattern(filter.Search))
		conditions = append(conditions, "(first_name ILIKE "+p+" OR email ILIKE "+p+")")
	}
	limit := q.add(filter.Limit + 1)
	offset := q.add(filter.Offset)

	query := `
        SELECT ` + customerColumns + `
          FROM customers` + whereClause(conditions) + `
         ORDER BY created_at, id
         LIMIT ` + limit + `
        OFFSET ` + offset

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, q.args...)
	if err != nil {
		return nil, "", translateCustomerPgError(err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0, filter.Limit+1)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, "", translateCustomerPgError(err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateCustomerPgError(err)
	}

	customers, next := trimPage(customers, filter.Limit, filter.Offset)
	return customers, next, nil
}

// EmployeeExists は担当社員として指定された社員が存在するかを返します。
func (r *CustomerRepository) EmployeeExists(ctx context.Context, employeeID string) (bool, error) {
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

// HasNotes は顧客にノートが残っているかを返します。
func (r *CustomerRepository) HasNotes(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var exists bool
	if err := exec.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM notes WHERE customer_id = $1)`, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// CountByEmployee は社員が担当する顧客数を返します。
func (r *CustomerRepository) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	if !validID(employeeID) {
		return 0, nil
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var count int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE employee_id = $1`, employeeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Reassign は顧客 1 件の担当社員を変更します。
func (r *CustomerRepository) Reassign(ctx context.Context, customerID, employeeID string, at time.Time) (*customer.Customer, error) {
	if !validID(customerID) {
		return nil, customer.ErrCustomerNotFound
	}
	if !validID(employeeID) {
		return nil, customer.ErrEmployeeNotFound
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE customers
           SET employee_id = $1,
               updated_at = $2
         WHERE id = $3
        RETURNING `+customerColumns,
		employeeID, at, customerID,
	)

	updated, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return updated, nil
}

// ReassignAll は担当社員を一括で付け替え、更新件数を返します。
func (r *CustomerRepository) ReassignAll(ctx context.Context, fromEmployeeID, toEmployeeID string, at time.Time) (int, error) {
	if !validID(toEmployeeID) {
		return 0, customer.ErrEmployeeNotFound
	}
	if !validID(fromEmployeeID) {
		return 0, nil
	}
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE customers
           SET employee_id = $1,
               updated_at = $2
         WHERE employee_id = $3
    `, toEmployeeID, at, fromEmployeeID)
	if err != nil {
		return 0, translateCustomerPgError(err)
	}
	return int(tag.RowsAffected()), nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		c               customer.Customer
		lastInteraction sql.NullTime
	)
	if err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&c.Address,
		&lastInteraction,
		&c.EmployeeID,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, err
	}
	c.LastInteractionDate = datePtr(lastInteraction)
	return &c, nil
}

func translateCustomerPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return customer.ErrCustomerNotFound
	}

	if pgErr, ok := asPgError(err); ok {
		switch pgErr.Code {
		case uniqueViolationCode:
			return customer.ErrEmailAlreadyExists
		case foreignKeyViolationCode:
			if pgErr.ConstraintName == "customers_employee_id_fkey" {
				return customer.ErrEmployeeNotFound
			}
		case invalidTextRepresentation:
			return customer.ErrCustomerNotFound
		}
	}

	return err
}
