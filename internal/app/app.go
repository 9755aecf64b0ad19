// Package app はリポジトリからユースケースまでの依存関係を組み立てます。
package app

import (
	"github.com/ogurasousui/codex-crm/internal/adapters/repository/memory"
	pgrepo "github.com/ogurasousui/codex-crm/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/core/shared"
	pgdb "github.com/ogurasousui/codex-crm/internal/platform/db/postgres"
)

// Repositories は永続化ポートの実装一式です。
type Repositories struct {
	Employees employee.Repository
	Customers customer.Repository
	Notes     note.Repository
	Inactive  inactive.Repository
	Tx        shared.TransactionManager
}

// MemoryRepositories はインメモリストアを使うリポジトリ一式を返します。
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Employees: store.Employees(),
		Customers: store.Customers(),
		Notes:     store.Notes(),
		Inactive:  store.InactiveEmployees(),
		Tx:        store,
	}
}

// PostgresRepositories は pgx を使うリポジトリ一式を返します。
func PostgresRepositories(pool pgdb.Queryer, tx *pgdb.TransactionManager) Repositories {
	return Repositories{
		Employees: pgrepo.NewEmployeeRepository(pool),
		Customers: pgrepo.NewCustomerRepository(pool),
		Notes:     pgrepo.NewNoteRepository(pool),
		Inactive:  pgrepo.NewInactiveEmployeeRepository(pool),
		Tx:        tx,
	}
}

// Options はユースケース生成時の設定です。
type Options struct {
	Clock  shared.Clock
	IDs    shared.IDGenerator
	Events orchestrator.EventPublisher
	Atomic bool
}

// Container は組み立て済みのユースケースです。
type Container struct {
	Employees *employee.Service
	Customers *customer.Service
	Notes     *note.Service
	Inactive  *inactive.Service
	Workflows *orchestrator.Service
}

// New は repos を使うユースケース一式を生成します。
func New(repos Repositories, opts Options) *Container {
	employees := employee.NewService(repos.Employees, opts.Clock, repos.Tx, opts.IDs)
	customers := customer.NewService(repos.Customers, opts.Clock, repos.Tx, opts.IDs)
	notes := note.NewService(repos.Notes, opts.Clock, repos.Tx, opts.IDs)
	archive := inactive.NewService(repos.Inactive, opts.Clock, repos.Tx, opts.IDs)

	workflows := orchestrator.NewService(orchestrator.Dependencies{
		Employees:       repos.Employees,
		Customers:       repos.Customers,
		Notes:           repos.Notes,
		Archive:         archive,
		CustomerCreator: customers,
		NoteCreator:     notes,
		Events:          opts.Events,
		Clock:           opts.Clock,
		Tx:              repos.Tx,
		Atomic:          opts.Atomic,
	})

	return &Container{
		Employees: employees,
		Customers: customers,
		Notes:     notes,
		Inactive:  archive,
		Workflows: workflows,
	}
}
