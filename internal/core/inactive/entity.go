// Package inactive は退職・異動などで無効化された社員の履歴を扱います。
package inactive

import "time"

// InactiveEmployee は無効化された社員のスナップショットと引き継ぎ履歴です。
type InactiveEmployee struct {
	ID                    string    `json:"id"`
	OriginalEmployeeID    string    `json:"originalEmployeeId" validate:"notblank"`
	FirstName             string    `json:"firstName" validate:"notblank,max=50"`
	LastName              string    `json:"lastName" validate:"notblank,max=50"`
	Email                 string    `json:"email" validate:"notblank,max=255"`
	Department            string    `json:"department" validate:"max=100"`
	ReplacementEmployeeID string    `json:"replacementEmployeeId" validate:"omitempty,nefield=OriginalEmployeeID"`
	ReassignedCustomers   int       `json:"reassignedCustomers" validate:"min=0"`
	ReassignedNotes       int       `json:"reassignedNotes" validate:"min=0"`
	DeactivatedAt         time.Time `json:"deactivatedAt"`
}

// Clone は e のコピーを返します。
func (e *InactiveEmployee) Clone() *InactiveEmployee {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}
