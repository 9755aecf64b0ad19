package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/rs/zerolog"
)

const (
	WorkflowDeactivateEmployee = "deactivate_employee"
	WorkflowReassignCustomers  = "reassign_customers"

	StepArchiveEmployee   = "archive_employee"
	StepReassignCustomers = "reassign_customers"
	StepReassignNotes     = "reassign_notes"
	StepDeleteEmployee    = "delete_employee"
)

var (
	ErrInvalidEmployeeID = errors.New("orchestrator: invalid employee id")
	ErrInvalidCustomerID = errors.New("orchestrator: invalid customer id")
	ErrSameEmployee      = errors.New("orchestrator: replacement must differ from the source employee")
	// ErrReplacementMismatch は再実行時の後任が履歴に記録済みの後任と異なることを表します。
	ErrReplacementMismatch = errors.New("orchestrator: replacement differs from the archived replacement")
)

// Dependencies は Service が利用する協調オブジェクトです。
type Dependencies struct {
	Employees       EmployeeStore
	Customers       CustomerStore
	Notes           NoteStore
	Archive         Archiver
	CustomerCreator CustomerCreator
	NoteCreator     NoteCreator
	Events          EventPublisher
	Clock           shared.Clock
	Tx              shared.TransactionManager
	// Atomic が true の場合はワークフロー全体を 1 トランザクションで実行します。
	Atomic bool
}

// Service は CRM の複合ユースケースを提供します。
type Service struct {
	deps   Dependencies
	engine *Engine
}

// UseCase はオーケストレーションの公開インターフェースです。
type UseCase interface {
	DeactivateEmployee(ctx context.Context, in DeactivateEmployeeInput) (*DeactivationResult, error)
	ReassignCustomers(ctx context.Context, in ReassignCustomersInput) (int, error)
	ReassignCustomer(ctx context.Context, in ReassignCustomerInput) (*customer.Customer, error)
	CreateCustomerForEmployee(ctx context.Context, employeeID string, req customer.Request) (*customer.Customer, error)
	CreateNoteForCustomer(ctx context.Context, customerID string, req note.Request) (*note.Note, error)
}

var _ UseCase = (*Service)(nil)

// NewService は Service を生成します。
func NewService(deps Dependencies) *Service {
	if deps.Events == nil {
		deps.Events = NoopPublisher{}
	}
	deps.Clock, deps.Tx, _ = shared.Defaults(deps.Clock, deps.Tx, nil)
	return &Service{deps: deps, engine: NewEngine(deps.Tx, deps.Atomic)}
}

// DeactivateEmployeeInput は社員無効化の入力です。
type DeactivateEmployeeInput struct {
	EmployeeID    string
	ReplacementID string
}

// ReassignCustomersInput は顧客一括引き継ぎの入力です。
type ReassignCustomersInput struct {
	FromEmployeeID string
	ToEmployeeID   string
}

// ReassignCustomerInput は顧客 1 件の担当変更の入力です。
type ReassignCustomerInput struct {
	CustomerID string
	EmployeeID string
}

// DeactivationResult は社員無効化の結果です。
type DeactivationResult struct {
	Workflow            *Result
	Inactive            *inactive.InactiveEmployee
	ReassignedCustomers int
	ReassignedNotes     int
}

// DeactivateEmployee は社員を履歴へ退避し、担当顧客とノートを後任へ引き継いだ上で削除します。
// 途中で失敗した場合は適用済みのステップを残したまま *StepError を返します。
func (s *Service) DeactivateEmployee(ctx context.Context, in DeactivateEmployeeInput) (*DeactivationResult, error) {
	employeeID, replacementID, err := normalizePair(in.EmployeeID, in.ReplacementID)
	if err != nil {
		return nil, err
	}

	if err := s.deps.Tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.ensureActive(txCtx, replacementID); err != nil {
			return fmt.Errorf("replacement: %w", err)
		}
		active, err := s.deps.Employees.Exists(txCtx, employeeID)
		if err != nil {
			return err
		}
		archived, err := s.deps.Archive.ExistsByOriginalEmployeeID(txCtx, employeeID)
		if err != nil {
			return err
		}
		if !archived {
			if !active {
				return employee.ErrEmployeeNotFound
			}
			return nil
		}
		// 再実行では履歴に記録済みの後任へ引き継ぐ。
		record, err := s.deps.Archive.GetByOriginalEmployeeID(txCtx, employeeID)
		if err != nil {
			return err
		}
		if record.ReplacementEmployeeID != "" && record.ReplacementEmployeeID != replacementID {
			return fmt.Errorf("%w: archived %s, requested %s", ErrReplacementMismatch, record.ReplacementEmployeeID, replacementID)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	out := &DeactivationResult{}
	wf := Workflow{
		Name: WorkflowDeactivateEmployee,
		Steps: []Step{
			{
				Name: StepArchiveEmployee,
				Done: func(ctx context.Context) (bool, error) {
					return s.deps.Archive.ExistsByOriginalEmployeeID(ctx, employeeID)
				},
				Apply: func(ctx context.Context) error {
					emp, err := s.deps.Employees.FindByID(ctx, employeeID)
					if err != nil {
						return err
					}
					_, err = s.deps.Archive.ArchiveEmployee(ctx, inactive.ArchiveEmployeeInput{
						Employee:              emp,
						ReplacementEmployeeID: replacementID,
					})
					return err
				},
			},
			{
				Name: StepReassignCustomers,
				Done: func(ctx context.Context) (bool, error) {
					n, err := s.deps.Customers.CountByEmployee(ctx, employeeID)
					return n == 0, err
				},
				Apply: func(ctx context.Context) error {
					if err := s.ensureActive(ctx, replacementID); err != nil {
						return err
					}
					n, err := s.deps.Customers.ReassignAll(ctx, employeeID, replacementID, s.deps.Clock.Now())
					if err != nil {
						return err
					}
					_, err = s.deps.Archive.RecordReassignment(ctx, inactive.RecordReassignmentInput{
						OriginalEmployeeID: employeeID,
						Customers:          n,
					})
					return err
				},
			},
			{
				Name: StepReassignNotes,
				Done: func(ctx context.Context) (bool, error) {
					n, err := s.deps.Notes.CountByEmployee(ctx, employeeID)
					return n == 0, err
				},
				Apply: func(ctx context.Context) error {
					if err := s.ensureActive(ctx, replacementID); err != nil {
						return err
					}
					n, err := s.deps.Notes.ReassignAll(ctx, employeeID, replacementID, s.deps.Clock.Now())
					if err != nil {
						return err
					}
					_, err = s.deps.Archive.RecordReassignment(ctx, inactive.RecordReassignmentInput{
						OriginalEmployeeID: employeeID,
						Notes:              n,
					})
					return err
				},
			},
			{
				Name: StepDeleteEmployee,
				Done: func(ctx context.Context) (bool, error) {
					exists, err := s.deps.Employees.Exists(ctx, employeeID)
					return !exists, err
				},
				Apply: func(ctx context.Context) error {
					referenced, err := s.deps.Employees.HasAssignments(ctx, employeeID)
					if err != nil {
						return err
					}
					if referenced {
						return employee.ErrEmployeeReferenced
					}
					return s.deps.Employees.Delete(ctx, employeeID)
				},
			},
		},
	}

	result, err := s.engine.Run(ctx, wf)
	out.Workflow = result
	if err != nil {
		return out, err
	}

	if err := s.deps.Tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		record, err := s.deps.Archive.GetByOriginalEmployeeID(txCtx, employeeID)
		if err != nil {
			return err
		}
		// 件数は履歴の累計を正とし、スキップされたステップの分も含める。
		out.Inactive = record
		out.ReassignedCustomers = record.ReassignedCustomers
		out.ReassignedNotes = record.ReassignedNotes
		return nil
	}); err != nil {
		return out, err
	}

	s.publish(ctx, Event{Type: EventEmployeeDeactivated, Data: EmployeeDeactivated{
		EmployeeID:          employeeID,
		ReplacementID:       replacementID,
		InactiveID:          out.Inactive.ID,
		ReassignedCustomers: out.ReassignedCustomers,
		ReassignedNotes:     out.ReassignedNotes,
	}})
	return out, nil
}

// ReassignCustomers は fromEmployeeID が担当する全顧客を toEmployeeID へ付け替え、件数を返します。
// 対象の顧客がいない場合は 0 を返します。
func (s *Service) ReassignCustomers(ctx context.Context, in ReassignCustomersInput) (int, error) {
	fromID, toID, err := normalizePair(in.FromEmployeeID, in.ToEmployeeID)
	if err != nil {
		return 0, err
	}

	if err := s.deps.Tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if err := s.ensureActive(txCtx, fromID); err != nil {
			return fmt.Errorf("source: %w", err)
		}
		if err := s.ensureActive(txCtx, toID); err != nil {
			return fmt.Errorf("target: %w", err)
		}
		return nil
	}); err != nil {
		return 0, err
	}

	var count int
	_, err = s.engine.Run(ctx, Workflow{
		Name: WorkflowReassignCustomers,
		Steps: []Step{{
			Name: StepReassignCustomers,
			Apply: func(ctx context.Context) error {
				if err := s.ensureActive(ctx, toID); err != nil {
					return fmt.Errorf("target: %w", err)
				}
				n, err := s.deps.Customers.ReassignAll(ctx, fromID, toID, s.deps.Clock.Now())
				count = n
				return err
			},
		}},
	})
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.publish(ctx, Event{Type: EventCustomersReassigned, Data: CustomersReassigned{
			FromEmployeeID: fromID,
			ToEmployeeID:   toID,
			Count:          count,
		}})
	}
	return count, nil
}

// ReassignCustomer は顧客 1 件の担当社員を変更します。
func (s *Service) ReassignCustomer(ctx context.Context, in ReassignCustomerInput) (*customer.Customer, error) {
	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}
	employeeID := strings.TrimSpace(in.EmployeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}

	var (
		previous string
		updated  *customer.Customer
	)
	if err := s.deps.Tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		current, err := s.deps.Customers.FindByID(txCtx, customerID)
		if err != nil {
			return err
		}
		if err := s.ensureActive(txCtx, employeeID); err != nil {
			return err
		}
		previous = current.EmployeeID
		if previous == employeeID {
			updated = current
			return nil
		}
		result, err := s.deps.Customers.Reassign(txCtx, customerID, employeeID, s.deps.Clock.Now())
		updated = result
		return err
	}); err != nil {
		return nil, err
	}

	if previous != employeeID {
		s.publish(ctx, Event{Type: EventCustomerReassigned, Data: CustomerReassigned{
			CustomerID:     customerID,
			FromEmployeeID: previous,
			ToEmployeeID:   employeeID,
		}})
	}
	return updated, nil
}

// CreateCustomerForEmployee は employeeID を担当社員として顧客を作成します。
func (s *Service) CreateCustomerForEmployee(ctx context.Context, employeeID string, req customer.Request) (*customer.Customer, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return nil, ErrInvalidEmployeeID
	}
	req.EmployeeID = employeeID

	created, err := s.deps.CustomerCreator.CreateCustomer(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{Type: EventCustomerCreated, Data: CustomerCreated{
		CustomerID: created.ID,
		EmployeeID: created.EmployeeID,
	}})
	return created, nil
}

// CreateNoteForCustomer は customerID に紐づくノートを作成します。
func (s *Service) CreateNoteForCustomer(ctx context.Context, customerID string, req note.Request) (*note.Note, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}
	req.CustomerID = customerID

	created, err := s.deps.NoteCreator.CreateNote(ctx, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, Event{Type: EventNoteCreated, Data: NoteCreated{
		NoteID:     created.ID,
		CustomerID: created.CustomerID,
		EmployeeID: created.EmployeeID,
	}})
	return created, nil
}

func (s *Service) ensureActive(ctx context.Context, employeeID string) error {
	exists, err := s.deps.Employees.Exists(ctx, employeeID)
	if err != nil {
		return err
	}
	if !exists {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event Event) {
	if err := s.deps.Events.Publish(ctx, event); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("event", event.Type).Msg("failed to publish event")
	}
}

func normalizePair(sourceID, targetID string) (string, string, error) {
	source := strings.TrimSpace(sourceID)
	target := strings.TrimSpace(targetID)
	if source == "" || target == "" {
		return "", "", ErrInvalidEmployeeID
	}
	if source == target {
		return "", "", ErrSameEmployee
	}
	return source, target, nil
}
