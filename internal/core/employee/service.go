package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"github.com/rs/zerolog"
)

// Service は社員に関するユースケースをまとめます。
type Service struct {
	repo      Repository
	clock     shared.Clock
	tx        shared.TransactionManager
	ids       shared.IDGenerator
	validator validation.Validator[*Employee]
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, req Request) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	ListDepartments(ctx context.Context) ([]string, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	PatchEmployee(ctx context.Context, in PatchEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。nil の依存はデフォルト実装で補います。
func NewService(repo Repository, clock shared.Clock, tx shared.TransactionManager, ids shared.IDGenerator) *Service {
	clock, tx, ids = shared.Defaults(clock, tx, ids)
	return &Service{repo: repo, clock: clock, tx: tx, ids: ids, validator: Validator{}}
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// UpdateEmployeeInput は社員の全体更新時の入力です。
type UpdateEmployeeInput struct {
	ID      string
	Request Request
}

// PatchEmployeeInput は社員の部分更新時の入力です。
type PatchEmployeeInput struct {
	ID    string
	Patch Patch
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	PageSize  int
	PageToken string
	Search    string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// CreateEmployee は新しい社員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, req Request) (*Employee, error) {
	emp, err := RequestToEntity.Transform(req)
	if err != nil {
		return nil, err
	}
	normalize(emp)
	if err := validation.Check("employee", s.validator, emp); err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmailNotExists(txCtx, emp.Email, ""); err != nil {
			return err
		}

		now := s.clock.Now()
		emp.ID = s.ids.NewID()
		emp.CreatedAt = now
		emp.UpdatedAt = now

		result, err := s.repo.Create(txCtx, emp)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("employee_id", created.ID).Msg("employee created")
	return created, nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
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

// GetEmployeeByEmail はメールアドレスで社員を取得します。
func (s *Service) GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, ErrEmployeeNotFound
	}

	var result *Employee
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

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, ok := shared.NormalizePageSize(in.PageSize)
	if !ok {
		return nil, ErrInvalidPageSize
	}
	offset, ok := shared.ParsePageToken(in.PageToken)
	if !ok {
		return nil, ErrInvalidPageToken
	}

	var result ListEmployeesResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		employees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Search: strings.TrimSpace(in.Search),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		result.Employees = employees
		result.NextPageToken = token
		return nil
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDepartments は登録済みの部署名を重複なく返します。
func (s *Service) ListDepartments(ctx context.Context) ([]string, error) {
	var departments []string
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListDepartments(txCtx)
		if err != nil {
			return err
		}
		departments = found
		return nil
	}); err != nil {
		return nil, err
	}
	return departments, nil
}

// UpdateEmployee は社員情報を全項目置き換えで更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	replacement, err := RequestToEntity.Transform(in.Request)
	if err != nil {
		return nil, err
	}
	normalize(replacement)
	if err := validation.Check("employee", s.validator, replacement); err != nil {
		return nil, err
	}

	return s.modify(ctx, id, func(existing *Employee) bool {
		existing.FirstName = replacement.FirstName
		existing.LastName = replacement.LastName
		existing.Email = replacement.Email
		existing.Department = replacement.Department
		return true
	})
}

// PatchEmployee は Patch に含まれるフィールドのみを更新します。空の Patch では何も書き込みません。
func (s *Service) PatchEmployee(ctx context.Context, in PatchEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	return s.modify(ctx, id, func(existing *Employee) bool {
		if in.Patch.IsEmpty() {
			return false
		}
		in.Patch.ApplyTo(existing)
		return true
	})
}

func (s *Service) modify(ctx context.Context, id string, mutate func(*Employee) bool) (*Employee, error) {
	var updated *Employee
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
		if err := validation.Check("employee", s.validator, existing); err != nil {
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

// DeleteEmployee は社員を削除します。担当顧客またはノートが残っている場合は ErrEmployeeReferenced を返します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.Exists(txCtx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrEmployeeNotFound
		}

		referenced, err := s.repo.HasAssignments(txCtx, id)
		if err != nil {
			return err
		}
		if referenced {
			return ErrEmployeeReferenced
		}

		return s.repo.Delete(txCtx, id)
	}); err != nil {
		if errors.Is(err, ErrEmployeeReferenced) {
			zerolog.Ctx(ctx).Warn().Str("employee_id", id).Msg("employee still has assignments")
		}
		return err
	}

	zerolog.Ctx(ctx).Info().Str("employee_id", id).Msg("employee deleted")
	return nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email, selfID string) error {
	emp, err := s.repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil && emp.ID != selfID {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalize(e *Employee) {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))
	e.Department = strings.TrimSpace(e.Department)
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	return trimmed, nil
}
