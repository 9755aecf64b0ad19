package customer

import "time"

// Customer は顧客エンティティです。EmployeeID は担当社員を指します。
type Customer struct {
	ID                  string     `json:"id"`
	FirstName           string     `json:"firstName" validate:"notblank,max=100"`
	LastName            string     `json:"lastName" validate:"notblank,max=100"`
	Email               string     `json:"email" validate:"notblank,email,max=255"`
	Phone               string     `json:"phone" validate:"notblank,min=10,max=15"`
	Address             string     `json:"address" validate:"max=100"`
	LastInteractionDate *time.Time `json:"lastInteractionDate"`
	EmployeeID          string     `json:"employeeId" validate:"notblank"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Clone は c のコピーを返します。
func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	clone := *c
	if c.LastInteractionDate != nil {
		d := *c.LastInteractionDate
		clone.LastInteractionDate = &d
	}
	return &clone
}
