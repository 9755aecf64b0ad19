package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout は日付のみを表す外部表現のレイアウトです。
const DateLayout = "2006-01-02"

// Date は JSON 上で "2006-01-02" 形式として扱う日付です。
type Date struct {
	time.Time
}

// DateOf は t の日付部分から Date を生成します。
func DateOf(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate は "2006-01-02" 形式の文字列を解釈します。
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("date %q: %w", raw, err)
	}
	return DateOf(t), nil
}

// MarshalJSON は日付を文字列として出力します。
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON は文字列の日付を読み込みます。
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DatePtr は *time.Time を *Date に変換します。
func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

// TimePtr は *Date を *time.Time に変換します。
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
