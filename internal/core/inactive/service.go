package inactive

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"github.com/rs/zerolog"
)

// Service は無効化社員の履歴を管理します。
type Service struct {
	repo      Repository
	clock     shared.Clock
	tx        shared.TransactionManager
	ids       shared.IDGenerator
	validator validation.Validator[*InactiveEmployee]
}

// UseCase は無効化社員ユースケースの公開インターフェースです。
type UseCase interface {
	ArchiveEmployee(ctx context.Context, in ArchiveEmployeeInput) (*InactiveEmployee, error)
	GetInactiveEmployee(ctx context.Context, id string) (*InactiveEmployee, error)
	GetByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (*InactiveEmployee, error)
	ExistsByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (bool, error)
	ListInactiveEmployees(ctx context.Context, in ListInactiveEmployeesInput) (*ListInactiveEmployeesResult, error)
	RecordReassignment(ctx context.Context, in RecordReassignmentInput) (*InactiveEmployee, error)
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。
func NewService(repo Repository, clock shared.Clock, tx shared.TransactionManager, ids shared.IDGenerator) *Service {
	clock, tx, ids = shared.Defaults(clock, tx, ids)
	return &Service{repo: repo, clock: clock, tx: tx, ids: ids, validator: Validator{}}
}

// ArchiveEmployeeInput は社員のアーカイブ時の入力です。
type ArchiveEmployeeInput struct {
	Employee              *employee.Employee
	ReplacementEmployeeID string
}

// ListInactiveEmployeesInput は一覧取得時の入力です。
type ListInactiveEmployeesInput struct {
	Department string
	PageSize   int
	PageToken  string
}

// ListInactiveEmployeesResult は一覧取得結果です。
type ListInactiveEmployeesResult struct {
	InactiveEmployees []*InactiveEmployee
	NextPageToken     string
}

// RecordReassignmentInput は引き継ぎ件数の記録時の入力です。
type RecordReassignmentInput struct {
	OriginalEmployeeID string
	Customers          int
	Notes              int
}

// ArchiveEmployee は社員のスナップショットを保存します。
// 同じ社員の履歴が既に存在する場合は新たに作成せず既存の履歴を返します。
func (s *Service) ArchiveEmployee(ctx context.Context, in ArchiveEmployeeInput) (*InactiveEmployee, error) {
	record, err := FromEmployee.Transform(in.Employee)
	if err != nil {
		return nil, err
	}
	record.ReplacementEmployeeID = strings.TrimSpace(in.ReplacementEmployeeID)
	if err := validation.Check("inactiveEmployee", s.validator, record); err != nil {
		return nil, err
	}

	var archived *InactiveEmployee
	created := false
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByOriginalEmployeeID(txCtx, record.OriginalEmployeeID)
		if err == nil {
			archived = existing
			return nil
		}
		if !errors.Is(err, ErrInactiveNotFound) {
			return err
		}

		record.ID = s.ids.NewID()
		record.DeactivatedAt = s.clock.Now()
		result, err := s.repo.Create(txCtx, record)
		if err != nil {
			return err
		}
		archived = result
		created = true
		return nil
	}); err != nil {
		return nil, err
	}

	if created {
		zerolog.Ctx(ctx).Info().
			Str("employee_id", archived.OriginalEmployeeID).
			Str("inactive_id", archived.ID).
			Msg("employee archived")
	}
	return archived, nil
}

// GetInactiveEmployee は ID で履歴を取得します。
func (s *Service) GetInactiveEmployee(ctx context.Context, id string) (*InactiveEmployee, error) {
	normalized, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	var result *InactiveEmployee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, normalized)
		result = found
		return err
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByOriginalEmployeeID は元の社員 ID で履歴を取得します。
func (s *Service) GetByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (*InactiveEmployee, error) {
	normalized, err := normalizeID(originalEmployeeID)
	if err != nil {
		return nil, err
	}
	var result *InactiveEmployee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByOriginalEmployeeID(txCtx, normalized)
		result = found
		return err
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// ExistsByOriginalEmployeeID は元の社員 ID の履歴が存在するかを返します。
func (s *Service) ExistsByOriginalEmployeeID(ctx context.Context, originalEmployeeID string) (bool, error) {
	normalized, err := normalizeID(originalEmployeeID)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ExistsByOriginalEmployeeID(txCtx, normalized)
		exists = found
		return err
	}); err != nil {
		return false, err
	}
	return exists, nil
}

// ListInactiveEmployees は履歴の一覧を取得します。
func (s *Service) ListInactiveEmployees(ctx context.Context, in ListInactiveEmployeesInput) (*ListInactiveEmployeesResult, error) {
	limit, ok := shared.NormalizePageSize(in.PageSize)
	if !ok {
		return nil, ErrInvalidPageSize
	}
	offset, ok := shared.ParsePageToken(in.PageToken)
	if !ok {
		return nil, ErrInvalidPageToken
	}

	var result ListInactiveEmployeesResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		records, token, err := s.repo.List(txCtx, ListFilter{
			Department: strings.TrimSpace(in.Department),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		result.InactiveEmployees = records
		result.NextPageToken = token
		return nil
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordReassignment は引き継いだ顧客・ノートの件数を履歴に加算します。
func (s *Service) RecordReassignment(ctx context.Context, in RecordReassignmentInput) (*InactiveEmployee, error) {
	id, err := normalizeID(in.OriginalEmployeeID)
	if err != nil {
		return nil, err
	}
	if in.Customers < 0 || in.Notes < 0 {
		return nil, ErrInvalidReassignCount
	}

	var result *InactiveEmployee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		updated, err := s.repo.AddReassignments(txCtx, id, in.Customers, in.Notes)
		result = updated
		return err
	}); err != nil {
		return nil, err
	}
	return result, nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	return trimmed, nil
}
