// Package memory は全リポジトリポートをプロセス内のマップで実装します。
// storage.driver=memory の起動とトランスポート層のテストで利用します。
package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ogurasousui/codex-crm/internal/core/customer"
	"github.com/ogurasousui/codex-crm/internal/core/employee"
	"github.com/ogurasousui/codex-crm/internal/core/inactive"
	"github.com/ogurasousui/codex-crm/internal/core/note"
	"github.com/ogurasousui/codex-crm/internal/core/shared"
)

// ErrReadOnlyTransaction は読み取り専用トランザクション内で書き込みを行おうとしたことを表します。
var ErrReadOnlyTransaction = errors.New("memory: write inside read-only transaction")

type state struct {
	employees map[string]employee.Employee
	customers map[string]customer.Customer
	notes     map[string]note.Note
	inactive  map[string]inactive.InactiveEmployee
}

func newState() *state {
	return &state{
		employees: make(map[string]employee.Employee),
		customers: make(map[string]customer.Customer),
		notes:     make(map[string]note.Note),
		inactive:  make(map[string]inactive.InactiveEmployee),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.employees {
		out.employees[k] = v
	}
	for k, v := range s.customers {
		out.customers[k] = *v.Clone()
	}
	for k, v := range s.notes {
		out.notes[k] = v
	}
	for k, v := range s.inactive {
		out.inactive[k] = v
	}
	return out
}

type txKey struct{}

type txn struct {
	state    *state
	readOnly bool
}

// Store はメモリ上のデータセットです。
// トランザクションは状態のコピーに対して実行され、成功時にのみ置き換えられます。
type Store struct {
	// writer は書き込みとトランザクションを直列化します。
	writer sync.Mutex
	mu     sync.RWMutex
	state  *state
}

var _ shared.TransactionManager = (*Store)(nil)

// NewStore は空の Store を生成します。
func NewStore() *Store {
	return &Store{state: newState()}
}

// Employees は社員リポジトリを返します。
func (s *Store) Employees() *EmployeeRepository { return &EmployeeRepository{store: s} }

// Customers は顧客リポジトリを返します。
func (s *Store) Customers() *CustomerRepository { return &CustomerRepository{store: s} }

// Notes はノートリポジトリを返します。
func (s *Store) Notes() *NoteRepository { return &NoteRepository{store: s} }

// InactiveEmployees は無効化社員リポジトリを返します。
func (s *Store) InactiveEmployees() *InactiveEmployeeRepository {
	return &InactiveEmployeeRepository{store: s}
}

// WithinReadOnly はスナップショットに対して fn を実行します。
func (s *Store) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	return fn(context.WithValue(ctx, txKey{}, &txn{state: snapshot, readOnly: true}))
}

// WithinReadWrite は状態のコピーに対して fn を実行し、成功時にコミットします。
func (s *Store) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	if tx, ok := txFromContext(ctx); ok {
		if tx.readOnly {
			return ErrReadOnlyTransaction
		}
		return fn(ctx)
	}

	s.writer.Lock()
	defer s.writer.Unlock()

	s.mu.RLock()
	working := s.state.clone()
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, &txn{state: working})); err != nil {
		return err
	}

	s.mu.Lock()
	s.state = working
	s.mu.Unlock()
	return nil
}

func txFromContext(ctx context.Context) (*txn, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txKey{}).(*txn)
	return tx, ok
}

func (s *Store) read(ctx context.Context, fn func(*state) error) error {
	if tx, ok := txFromContext(ctx); ok {
		return fn(tx.state)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// write の fn は検証を終えてから状態を変更すること。途中で失敗した場合の巻き戻しは行いません。
func (s *Store) write(ctx context.Context, fn func(*state) error) error {
	if tx, ok := txFromContext(ctx); ok {
		if tx.readOnly {
			return ErrReadOnlyTransaction
		}
		return fn(tx.state)
	}
	s.writer.Lock()
	defer s.writer.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func containsFold(value, search string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(search)))
}

// page は並べ替え済みの items から offset/limit の範囲と次ページトークンを返します。
func page[T any](items []T, limit, offset int) ([]T, string) {
	if offset >= len(items) {
		return []T{}, ""
	}
	end := offset + limit
	if end >= len(items) {
		return items[offset:], ""
	}
	return items[offset:end], shared.NextPageToken(offset, limit, len(items)-offset)
}
