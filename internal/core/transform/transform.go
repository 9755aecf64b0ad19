// Package transform はリクエスト・エンティティ・レスポンス間の変換契約を定義します。
//
// 変換は純粋関数であり、I/O や副作用を持ちません。失敗するのは
// 変換元に必須の参照が欠けている場合のみです。
package transform

import (
	"errors"
	"fmt"
)

// ErrMissingField は変換元に必須項目が欠けていることを表します。
var ErrMissingField = errors.New("transform: missing required field")

// Transformer は S から T への変換を表します。
type Transformer[S, T any] interface {
	Transform(src S) (T, error)
}

// Func は関数を Transformer として扱うためのアダプタです。
type Func[S, T any] func(src S) (T, error)

// Transform は f(src) を返します。
func (f Func[S, T]) Transform(src S) (T, error) {
	return f(src)
}

// Missing は field が欠けていることを示すエラーを返します。
func Missing(field string) error {
	return fmt.Errorf("%s: %w", field, ErrMissingField)
}

// Slice は src の各要素を t で変換します。最初に失敗した要素の位置を含むエラーを返します。
func Slice[S, T any](t Transformer[S, T], src []S) ([]T, error) {
	out := make([]T, 0, len(src))
	for i, item := range src {
		converted, err := t.Transform(item)
		if err != nil {
			return nil, fmt.Errorf("transform: item %d: %w", i, err)
		}
		out = append(out, converted)
	}
	return out, nil
}

// Chain は first と second を合成した Transformer を返します。
func Chain[A, B, C any](first Transformer[A, B], second Transformer[B, C]) Transformer[A, C] {
	return Func[A, C](func(src A) (C, error) {
		mid, err := first.Transform(src)
		if err != nil {
			var zero C
			return zero, err
		}
		return second.Transform(mid)
	})
}
