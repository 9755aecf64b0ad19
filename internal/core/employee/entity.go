package employee

import "time"

// Employee は社員エンティティです。
type Employee struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName" validate:"notblank,min=2,max=50"`
	LastName   string    `json:"lastName" validate:"notblank,min=2,max=50"`
	Email      string    `json:"email" validate:"notblank,email,max=255"`
	Department string    `json:"department" validate:"notblank,max=100"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Clone は e のコピーを返します。
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}
