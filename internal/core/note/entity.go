package note

import "time"

// InteractionType は顧客とのやり取りの種別です。
type InteractionType string

const (
	InteractionEmail     InteractionType = "EMAIL"
	InteractionPhoneCall InteractionType = "PHONE_CALL"
	InteractionMeeting   InteractionType = "MEETING"
	InteractionOther     InteractionType = "OTHER"
)

// InteractionTypes は有効な InteractionType の一覧です。
func InteractionTypes() []InteractionType {
	return []InteractionType{InteractionEmail, InteractionPhoneCall, InteractionMeeting, InteractionOther}
}

// Valid は t が定義済みの種別かどうかを返します。
func (t InteractionType) Valid() bool {
	for _, v := range InteractionTypes() {
		if t == v {
			return true
		}
	}
	return false
}

// Note は顧客とのやり取りの記録です。EmployeeID は記録を担当する社員を指します。
type Note struct {
	ID              string          `json:"id"`
	Content         string          `json:"content" validate:"notblank,max=1000"`
	Date            time.Time       `json:"date" validate:"required"`
	InteractionType InteractionType `json:"interactionType" validate:"required,oneof=EMAIL PHONE_CALL MEETING OTHER"`
	CustomerID      string          `json:"customerId" validate:"notblank"`
	EmployeeID      string          `json:"employeeId"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Clone は n のコピーを返します。
func (n *Note) Clone() *Note {
	if n == nil {
		return nil
	}
	clone := *n
	return &clone
}
