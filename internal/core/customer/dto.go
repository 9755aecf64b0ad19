package customer

import "github.com/ogurasousui/codex-crm/internal/core/shared"

// Request は顧客の作成・全体更新時の入力表現です。
// EmployeeID は作成時のみ使用され、更新では担当社員は変わりません。
type Request struct {
	FirstName           string       `json:"firstName"`
	LastName            string       `json:"lastName"`
	Email               string       `json:"email"`
	Phone               string       `json:"phone"`
	Address             string       `json:"address,omitempty"`
	LastInteractionDate *shared.Date `json:"lastInteractionDate,omitempty"`
	EmployeeID          string       `json:"employeeId,omitempty"`
}

// Patch は部分更新の入力表現です。nil のフィールドは変更しません。
type Patch struct {
	FirstName           *string      `json:"firstName,omitempty"`
	LastName            *string      `json:"lastName,omitempty"`
	Email               *string      `json:"email,omitempty"`
	Phone               *string      `json:"phone,omitempty"`
	Address             *string      `json:"address,omitempty"`
	LastInteractionDate *shared.Date `json:"lastInteractionDate,omitempty"`
}

// IsEmpty はいずれのフィールドも指定されていない場合に true を返します。
func (p Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.Phone == nil && p.Address == nil && p.LastInteractionDate == nil
}

// ApplyTo は指定されたフィールドのみを c に上書きします。
func (p Patch) ApplyTo(c *Customer) {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.LastInteractionDate != nil {
		c.LastInteractionDate = p.LastInteractionDate.TimePtr()
	}
}

// Response は外部へ公開する顧客表現です。
type Response struct {
	ID                  string       `json:"id"`
	FirstName           string       `json:"firstName"`
	LastName            string       `json:"lastName"`
	Email               string       `json:"email"`
	Phone               string       `json:"phone"`
	Address             string       `json:"address,omitempty"`
	LastInteractionDate *shared.Date `json:"lastInteractionDate,omitempty"`
	EmployeeID          string       `json:"employeeId"`
}
