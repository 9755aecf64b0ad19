package inactive

import "time"

// Response は外部へ公開する無効化社員の表現です。
type Response struct {
	ID                    string    `json:"id"`
	OriginalEmployeeID    string    `json:"originalEmployeeId"`
	FirstName             string    `json:"firstName"`
	LastName              string    `json:"lastName"`
	Email                 string    `json:"email"`
	Department            string    `json:"department"`
	ReplacementEmployeeID string    `json:"replacementEmployeeId,omitempty"`
	ReassignedCustomers   int       `json:"reassignedCustomers"`
	ReassignedNotes       int       `json:"reassignedNotes"`
	DeactivatedAt         time.Time `json:"deactivatedAt"`
}
