package note

import (
	"context"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/ogurasousui/codex-crm/internal/core/validation"
	"github.com/rs/zerolog"
)

// Service はノートに関するユースケースをまとめます。
type Service struct {
	repo      Repository
	clock     shared.Clock
	tx        shared.TransactionManager
	ids       shared.IDGenerator
	validator validation.Validator[*Note]
}

// UseCase はノートユースケースの公開インターフェースです。
type UseCase interface {
	CreateNote(ctx context.Context, req Request) (*Note, error)
	GetNote(ctx context.Context, in GetNoteInput) (*Note, error)
	ListNotes(ctx context.Context, in ListNotesInput) (*ListNotesResult, error)
	ListNotesByCustomer(ctx context.Context, in ListNotesByCustomerInput) (*ListNotesResult, error)
	UpdateNote(ctx context.Context, in UpdateNoteInput) (*Note, error)
	PatchNote(ctx context.Context, in PatchNoteInput) (*Note, error)
	DeleteNote(ctx context.Context, in DeleteNoteInput) error
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。
func NewService(repo Repository, clock shared.Clock, tx shared.TransactionManager, ids shared.IDGenerator) *Service {
	clock, tx, ids = shared.Defaults(clock, tx, ids)
	return &Service{repo: repo, clock: clock, tx: tx, ids: ids, validator: Validator{}}
}

// GetNoteInput はノート取得時の入力です。
type GetNoteInput struct {
	ID string
}

// UpdateNoteInput はノートの全体更新時の入力です。
type UpdateNoteInput struct {
	ID      string
	Request Request
}

// PatchNoteInput はノートの部分更新時の入力です。
type PatchNoteInput struct {
	ID    string
	Patch Patch
}

// DeleteNoteInput はノート削除時の入力です。
type DeleteNoteInput struct {
	ID string
}

// ListNotesInput は一覧取得時の入力です。
type ListNotesInput struct {
	PageSize   int
	PageToken  string
	EmployeeID string
}

// ListNotesByCustomerInput は顧客ごとの一覧取得時の入力です。
type ListNotesByCustomerInput struct {
	CustomerID string
	PageSize   int
	PageToken  string
}

// ListNotesResult は一覧取得結果です。
type ListNotesResult struct {
	Notes         []*Note
	NextPageToken string
}

// CreateNote は顧客に紐づくノートを作成します。記録者が未指定なら顧客の担当社員を設定します。
func (s *Service) CreateNote(ctx context.Context, req Request) (*Note, error) {
	n, err := RequestToEntity.Transform(req)
	if err != nil {
		return nil, err
	}
	normalize(n)
	if err := validation.Check("note", s.validator, n); err != nil {
		return nil, err
	}

	var created *Note
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		owner, err := s.repo.CustomerOwner(txCtx, n.CustomerID)
		if err != nil {
			return err
		}
		if n.EmployeeID == "" {
			n.EmployeeID = owner
		} else if n.EmployeeID != owner {
			exists, err := s.repo.EmployeeExists(txCtx, n.EmployeeID)
			if err != nil {
				return err
			}
			if !exists {
				return ErrEmployeeNotFound
			}
		}

		now := s.clock.Now()
		n.ID = s.ids.NewID()
		n.CreatedAt = now
		n.UpdatedAt = now

		result, err := s.repo.Create(txCtx, n)
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("note_id", created.ID).
		Str("customer_id", created.CustomerID).
		Msg("note created")
	return created, nil
}

// GetNote はノートを取得します。
func (s *Service) GetNote(ctx context.Context, in GetNoteInput) (*Note, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	var result *Note
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

// ListNotes はノートの一覧を日付の新しい順に取得します。
func (s *Service) ListNotes(ctx context.Context, in ListNotesInput) (*ListNotesResult, error) {
	return s.list(ctx, ListNotesFilter{EmployeeID: strings.TrimSpace(in.EmployeeID)}, in.PageSize, in.PageToken)
}

// ListNotesByCustomer は顧客のノートを取得します。顧客が存在しない場合は ErrCustomerNotFound です。
func (s *Service) ListNotesByCustomer(ctx context.Context, in ListNotesByCustomerInput) (*ListNotesResult, error) {
	customerID, err := normalizeID(in.CustomerID, ErrInvalidCustomerID)
	if err != nil {
		return nil, err
	}
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		_, err := s.repo.CustomerOwner(txCtx, customerID)
		return err
	}); err != nil {
		return nil, err
	}
	return s.list(ctx, ListNotesFilter{CustomerID: customerID}, in.PageSize, in.PageToken)
}

func (s *Service) list(ctx context.Context, filter ListNotesFilter, pageSize int, pageToken string) (*ListNotesResult, error) {
	limit, ok := shared.NormalizePageSize(pageSize)
	if !ok {
		return nil, ErrInvalidPageSize
	}
	offset, ok := shared.ParsePageToken(pageToken)
	if !ok {
		return nil, ErrInvalidPageToken
	}
	filter.Limit = limit
	filter.Offset = offset

	var result ListNotesResult
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		notes, token, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		result.Notes = notes
		result.NextPageToken = token
		return nil
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateNote はノートの内容・日付・種別を置き換えます。顧客と記録者は変更しません。
func (s *Service) UpdateNote(ctx context.Context, in UpdateNoteInput) (*Note, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	replacement, err := RequestToEntity.Transform(in.Request)
	if err != nil {
		return nil, err
	}

	return s.modify(ctx, id, func(existing *Note) bool {
		existing.Content = replacement.Content
		existing.Date = replacement.Date
		existing.InteractionType = replacement.InteractionType
		return true
	})
}

// PatchNote は Patch に含まれるフィールドのみを更新します。
func (s *Service) PatchNote(ctx context.Context, in PatchNoteInput) (*Note, error) {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return nil, err
	}

	return s.modify(ctx, id, func(existing *Note) bool {
		if in.Patch.IsEmpty() {
			return false
		}
		in.Patch.ApplyTo(existing)
		return true
	})
}

func (s *Service) modify(ctx context.Context, id string, mutate func(*Note) bool) (*Note, error) {
	var updated *Note
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if !mutate(existing) {
			updated = existing
			return nil
		}

		normalize(existing)
		if err := validation.Check("note", s.validator, existing); err != nil {
			return err
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

// DeleteNote はノートを削除します。
func (s *Service) DeleteNote(ctx context.Context, in DeleteNoteInput) error {
	id, err := normalizeID(in.ID, ErrInvalidID)
	if err != nil {
		return err
	}
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("note_id", id).Msg("note deleted")
	return nil
}

func normalize(n *Note) {
	n.Content = strings.TrimSpace(n.Content)
	n.InteractionType = InteractionType(strings.ToUpper(strings.TrimSpace(string(n.InteractionType))))
	n.CustomerID = strings.TrimSpace(n.CustomerID)
	n.EmployeeID = strings.TrimSpace(n.EmployeeID)
	if !n.Date.IsZero() {
		n.Date = *shared.NormalizeDate(&n.Date)
	}
}

func normalizeID(raw string, sentinel error) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", sentinel)
	}
	return trimmed, nil
}
