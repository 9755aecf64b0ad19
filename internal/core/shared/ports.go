package shared

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

// SystemClock は UTC の現在時刻を返す Clock です。
type SystemClock struct{}

// Now は現在時刻を返します。
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

// NoopTransactionManager はトランザクションを張らずに fn をそのまま実行します。
type NoopTransactionManager struct{}

// WithinReadOnly は fn を実行します。
func (NoopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// WithinReadWrite は fn を実行します。
func (NoopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// IDGenerator は永続化前のエンティティ ID を払い出します。
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator は UUIDv4 文字列を払い出します。
type UUIDGenerator struct{}

// NewID は新しい UUID を返します。
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Defaults は nil の依存をデフォルト実装で埋めて返します。
func Defaults(clock Clock, tx TransactionManager, ids IDGenerator) (Clock, TransactionManager, IDGenerator) {
	if clock == nil {
		clock = SystemClock{}
	}
	if tx == nil {
		tx = NoopTransactionManager{}
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return clock, tx, ids
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// NormalizePageSize は 0 以下をデフォルト値に置き換えます。上限超過時は false を返します。
func NormalizePageSize(pageSize int) (int, bool) {
	if pageSize <= 0 {
		return DefaultPageSize, true
	}
	if pageSize > MaxPageSize {
		return 0, false
	}
	return pageSize, true
}

// ParsePageToken はオフセット形式のページトークンを解釈します。
func ParsePageToken(token string) (int, bool) {
	if strings.TrimSpace(token) == "" {
		return 0, true
	}
	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, false
	}
	return offset, true
}

// NextPageToken は次ページが存在する場合のトークンを返します。
func NextPageToken(offset, limit, fetched int) string {
	if fetched <= limit {
		return ""
	}
	return strconv.Itoa(offset + limit)
}

// TrimPtr は文字列ポインタの前後空白を取り除いたコピーを返します。
func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

// NormalizeDate は日付部分のみを UTC で保持した値を返します。
func NormalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	normalized := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &normalized
}
