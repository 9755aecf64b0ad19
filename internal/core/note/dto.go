package note

import "github.com/ogurasousui/codex-crm/internal/core/shared"

// Request はノート作成・全体更新時の入力表現です。
// EmployeeID を省略した場合は顧客の担当社員が記録者になります。
type Request struct {
	Content         string          `json:"content"`
	Date            *shared.Date    `json:"date"`
	InteractionType InteractionType `json:"interactionType"`
	CustomerID      string          `json:"customerId,omitempty"`
	EmployeeID      string          `json:"employeeId,omitempty"`
}

// Patch は部分更新の入力表現です。
type Patch struct {
	Content         *string          `json:"content,omitempty"`
	Date            *shared.Date     `json:"date,omitempty"`
	InteractionType *InteractionType `json:"interactionType,omitempty"`
}

// IsEmpty はいずれのフィールドも指定されていない場合に true を返します。
func (p Patch) IsEmpty() bool {
	return p.Content == nil && p.Date == nil && p.InteractionType == nil
}

// ApplyTo は指定されたフィールドのみを n に上書きします。
func (p Patch) ApplyTo(n *Note) {
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Date != nil {
		n.Date = p.Date.Time
	}
	if p.InteractionType != nil {
		n.InteractionType = *p.InteractionType
	}
}

// Response は外部へ公開するノート表現です。
type Response struct {
	ID              string          `json:"id"`
	Content         string          `json:"content"`
	Date            shared.Date     `json:"date"`
	InteractionType InteractionType `json:"interactionType"`
	CustomerID      string          `json:"customerId"`
	EmployeeID      string          `json:"employeeId"`
}
