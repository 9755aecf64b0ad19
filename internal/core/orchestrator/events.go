package orchestrator

import (
	"context"

	"github.com/rs/zerolog"
)

const (
	EventEmployeeDeactivated = "crm.employee.deactivated.v1"
	EventCustomersReassigned = "crm.customers.reassigned.v1"
	EventCustomerReassigned  = "crm.customer.reassigned.v1"
	EventCustomerCreated     = "crm.customer.created.v1"
	EventNoteCreated         = "crm.note.created.v1"
)

// Event は完了したワークフローの通知です。Type はルーティングキーとしても使われます。
type Event struct {
	Type string
	Data any
}

// EventPublisher はドメインイベントの送出先です。
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher はイベントを破棄します。
type NoopPublisher struct{}

// Publish は何もせず nil を返します。
func (NoopPublisher) Publish(ctx context.Context, event Event) error {
	zerolog.Ctx(ctx).Debug().Str("event", event.Type).Msg("event publishing disabled")
	return nil
}

// EmployeeDeactivated は社員無効化完了イベントのペイロードです。
type EmployeeDeactivated struct {
	EmployeeID          string `json:"employee_id"`
	ReplacementID       string `json:"replacement_id"`
	InactiveID          string `json:"inactive_id"`
	ReassignedCustomers int    `json:"reassigned_customers"`
	ReassignedNotes     int    `json:"reassigned_notes"`
}

// CustomersReassigned は一括引き継ぎ完了イベントのペイロードです。
type CustomersReassigned struct {
	FromEmployeeID string `json:"from_employee_id"`
	ToEmployeeID   string `json:"to_employee_id"`
	Count          int    `json:"count"`
}

// CustomerReassigned は顧客 1 件の担当変更イベントのペイロードです。
type CustomerReassigned struct {
	CustomerID     string `json:"customer_id"`
	FromEmployeeID string `json:"from_employee_id"`
	ToEmployeeID   string `json:"to_employee_id"`
}

// CustomerCreated は顧客作成イベントのペイロードです。
type CustomerCreated struct {
	CustomerID string `json:"customer_id"`
	EmployeeID string `json:"employee_id"`
}

// NoteCreated はノート作成イベントのペイロードです。
type NoteCreated struct {
	NoteID     string `json:"note_id"`
	CustomerID string `json:"customer_id"`
	EmployeeID string `json:"employee_id"`
}
