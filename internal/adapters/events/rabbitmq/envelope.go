// Package rabbitmq はワークフロー完了イベントを RabbitMQ のトピック交換機へ送出します。
package rabbitmq

import "time"

// Meta はイベントの付帯情報です。
type Meta struct {
	CorrelationID *string   `json:"correlation_id,omitempty"`
	ID            string    `json:"id"`
	Producer      *string   `json:"producer,omitempty"`
	Time          time.Time `json:"time"`
	// Type はイベント名とバージョンです。例: crm.employee.deactivated.v1
	Type string `json:"type"`
}

// Envelope は送出されるメッセージ本体です。
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}
