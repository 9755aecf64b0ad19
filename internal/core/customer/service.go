package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"github.com/rs/zerolog"
)

// Service は顧客に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	clock     shared.Clock
	tx        shared.TransactionManager
	ids       shared.IDGenerator
	validator validation.Validator[*Customer]
}

// UseCase は顧客ユースケースの公開インターフェースです。
type UseCase interface {
	CreateCustomer(ctx context.Context, req Request) (*Customer, error)
	GetCustomer(ctx context.Context, in GetCustomerInput) (*Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	ListCustomers(ctx context.Context, in ListCustomersInput) (*ListCustomersResult, error)
	ListCustomersByEmployee(ctx context.Context, in ListCustomersByEmployeeInput) (*ListCustomersResult, error)
	UpdateCustomer(ctx context.Context, in UpdateCustomerInput) (*Customer, error)
	PatchCustomer(ctx context.Context, in PatchCustomerInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, in DeleteCustomerInput) error
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。
func NewService(repo Repository, clock shared.Clock, tx shared.TransactionManager, ids shared.IDGenerator) *Service {
	clock, tx, ids = shared.Defaults(clock, tx, ids)
	return &Service{repo: repo, clock: clock, tx: tx, ids: ids, validator: Validator{}}
}

// GetCustomerInput は顧客取得時の入力です。
type GetCustomerInput struct {
	ID string
}

// UpdateCustomerInput は顧客の全体更新時の入力です。
type UpdateCustomerInput struct {
	ID      string
	Request Request
}

// PatchCustomerInput は顧客の部分更新時の入力です。
type PatchCustomerInput struct {
	ID    string
	Patch Patch
}

// DeleteCustomerInput は顧客削除時の入力です。
type DeleteCustomerInput struct {
	ID string
}

// ListCustomersInput は一覧取得時の入力です。
type ListCustomersInput struct {
	PageSize   int
	PageToken  string
	Search     string
	EmployeeID string
}

// ListCustomersByEmployeeInput は担当社員ごとの一覧取得時の入力です。
type ListCustomersByEmployeeInput struct {
	EmployeeID string
	PageSize   int
	PageToken  string
}

// ListCustomersResult は一覧取得結果です。
type ListCustomersResult struct {
	Customers     []*Customer
	NextPageToken string
}

// CreateCustomer は担当社員の存在を確認した上で顧客を作成します。
func (s *Service) CreateCustomer(ctx context.Context, req Request) (*Customer, error) {
	c, err := RequestToEntity.Transform(req)
	if err != nil {
		return nil, err
	}
	normalize(c)
	if err := validation.Check("customer", s.validator, c); err != nil {
		return nil, err
	}

	var created *Customer
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.EmployeeExists(txCtx, c.EmployeeID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrEmployeeNotFound
		}
		if err := s.ensureEmailNotExists(txCtx, c.Email, ""); err != nil {
			return err
		}

		now := s.clock.Now()
		c.ID = s.ids.NewID()
		c.CreatedAt = now
		c.UpdatedAt = now

		result, err := s.repo.Create(txCtx, c)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("customer_id", created.ID).
		Str("employee_id", created.EmployeeID).
		Msg("customer created")
	return created, nil
}

// GetCustomer は顧客を取得します。
func (s *Service) GetCustomer(ctx context.Context, in GetCustomerInput) (*Customer, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var result *Customer
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// GetCustomerByEmail はメールアドレスで顧客を取得します。
func (s *Service) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, ErrCustomerNotFound
	}

	var result *Customer
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByEmail(txCtx, normalized)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// ListCustomers は顧客の一覧を取得します。
func (s *Service) ListCustomers(ctx context.Context, in ListCustomersInput) (*ListCustomersResult, error) {
	limit, ok := shared.NormalizePageSize(in.PageSize)
	if !ok {
		return nil, ErrInvalidPageSize
	}
	offset, ok := shared.ParsePageToken(in.PageToken)
	if !ok {
		return nil, ErrInvalidPageToken
	}

	var result ListCustomersResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		customers, token, err := s.repo.List(txCtx, ListCustomersFilter{
			EmployeeID: strings.TrimSpace(in.EmployeeID),
			Search:     strings.TrimSpace(in.Search),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		result.Customers = customers
		result.NextPageToken = token
		return nil
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListCustomersByEmployee は指定社員が担当する顧客を返します。社員が存在しない場合は ErrEmployeeNotFound です。
func (s *Service) ListCustomersByEmployee(ctx context.Context, in ListCustomersByEmployeeInput) (*ListCustomersResult, error) {
	employeeID, err := normalizeID(in.EmployeeID, ErrInvalidEmployeeID)
	if err != nil {
		return nil, err
	}

	var exists bool
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.EmployeeExists(txCtx, employeeID)
		exists = found
		return err
	}); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrEmployeeNotFound
	}

	return s.ListCustomers(ctx, ListCustomersInput{
		EmployeeID: employeeID,
		PageSize:   in.PageSize,
		PageToken:  in.PageToken,
	})
}

// UpdateCustomer は顧客情報を全項目置き換えで更新します。担当社員は変更しません。
func (s *Service) UpdateCustomer(ctx context.Context, in UpdateCustomerInput) (*Customer, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	replacement, err := RequestToEntity.Transform(in.Request)
	if err != nil {
		return nil, err
	}

	return s.modify(ctx, id, func(existing *Customer) bool {
		existing.FirstName = replacement.FirstName
		existing.LastName = replacement.LastName
		existing.Email = replacement.Email
		existing.Phone = replacement.Phone
		existing.Address = replacement.Address
		existing.LastInteractionDate = replacement.LastInteractionDate
		return true
	})
}

// PatchCustomer は Patch に含まれるフィールドのみを更新します。
func (s *Service) PatchCustomer(ctx context.Context, in PatchCustomerInput) (*Customer, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	return s.modify(ctx, id, func(existing *Customer) bool {
		if in.Patch.IsEmpty() {
			return false
		}
		in.Patch.ApplyTo(existing)
		return true
	})
}

func (s *Service) modify(ctx context.Context, id string, mutate func(*Customer) bool) (*Customer, error) {
	var updated *Customer
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		previousEmail := existing.Email

		if !mutate(existing) {
			updated = existing
			return nil
		}

		normalize(existing)
		if err := validation.Check("customer", s.validator, existing); err != nil {
			return err
		}
		if existing.Email != previousEmail {
			if err := s.ensureEmailNotExists(txCtx, existing.Email, existing.ID); err != nil {
				return err
			}
		}

		existing.UpdatedAt = s.clock.Now()
		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}
		updated = result
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCustomer は顧客を削除します。ノートが残っている場合は ErrCustomerReferenced を返します。
func (s *Service) DeleteCustomer(ctx context.Context, in DeleteCustomerInput) error {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, id); err != nil {
			return err
		}
		referenced, err := s.repo.HasNotes(txCtx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrCustomerReferenced
		}
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("customer_id", id).Msg("customer deleted")
	return nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email, selfID string) error {
	c, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrCustomerNotFound) {
		return err
	}
	if c != nil && c.ID != selfID {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalize(c *Customer) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.EmployeeID = strings.TrimSpace(c.EmployeeID)
	c.LastInteractionDate = shared.NormalizeDate(c.LastInteractionDate)
}

func normalizeID(raw string, sentinel error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", sentinel)
	}
	return trimmed, nil
}
