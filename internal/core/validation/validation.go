// Package validation はエンティティ単位の不変条件チェックの契約を定義します。
//
// Validator は入力を変更せず、違反があったフィールドごとに 1 件の FieldError を返します。
// 規則はエンティティの validate タグで宣言し、Struct が go-playground/validator で評価します。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrInvalid は 1 件以上のフィールド違反があったことを表します。
var ErrInvalid = errors.New("validation: invalid input")

// FieldError はフィールド単位の違反内容です。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator は T の不変条件を検査します。違反がなければ空のスライスを返します。
type Validator[T any] interface {
	Validate(value T) []FieldError
}

// Func は関数を Validator として扱うためのアダプタです。
type Func[T any] func(value T) []FieldError

// Validate は f(value) を返します。
func (f Func[T]) Validate(value T) []FieldError {
	return f(value)
}

// Error は検証失敗を呼び出し元へ伝えるエラーです。
type Error struct {
	Entity string
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%s: invalid %s: %s", "validation", e.Entity, strings.Join(parts, "; "))
}

// Is は ErrInvalid との比較を可能にします。
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// Check は v で value を検査し、違反があれば *Error を返します。
func Check[T any](entity string, v Validator[T], value T) error {
	fields := v.Validate(value)
	if len(fields) == 0 {
		return nil
	}
	return &Error{Entity: entity, Fields: fields}
}

// FieldsOf は err に含まれるフィールド違反を取り出します。
func FieldsOf(err error) []FieldError {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

// Messages は違反時に返すメッセージです。
// キーは "field.tag" (例: "email.email") で、見つからなければ "field" を参照します。
type Messages map[string]string

func (m Messages) lookup(field, tag string) string {
	if msg, ok := m[field+"."+tag]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}
	return field + " is invalid"
}

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

// Engine は共有の *validator.Validate を返します。
// フィールド名には json タグを使い、notblank タグを登録済みです。
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("validation: register notblank: %v", err))
		}
		engine = v
	})
	return engine
}

// Struct は value の validate タグを評価し、違反したフィールドごとに FieldError を返します。
// 同一フィールドで複数の規則に違反した場合も最初の 1 件だけを返します。
func Struct(value any, messages Messages) []FieldError {
	err := Engine().Struct(value)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "value", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	seen := make(map[string]struct{}, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, FieldError{Field: field, Message: messages.lookup(field, fe.Tag())})
	}
	return out
}
