package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-crm/internal/core/orchestrator"
	"github.com/ogurasousui/codex-crm/internal/core/shared"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// ErrNotAcknowledged はブローカーがメッセージを受理しなかったことを表します。
var ErrNotAcknowledged = errors.New("rabbitmq: publish not acknowledged")

// channel は Publisher が利用する amqp.Channel の操作です。
type channel interface {
	Confirm(noWait bool) error
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error)
	Close() error
}

// Options は Publisher の設定です。
type Options struct {
	Connection ConnectionOptions
	Exchange   string
	Producer   string
}

// Publisher は orchestrator.EventPublisher の RabbitMQ 実装です。
// 送出ごとに確認モードのチャネルを開き、ブローカーの ack を待ちます。
type Publisher struct {
	open     func() (channel, error)
	close    func() error
	exchange string
	producer string
	now      func() time.Time
}

var _ orchestrator.EventPublisher = (*Publisher)(nil)

// New は接続を確立し、トピック交換機を宣言した Publisher を返します。
func New(ctx context.Context, opts Options) (*Publisher, error) {
	conn, err := DialWithRetry(ctx, opts.Connection)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(opts.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange %s: %w", opts.Exchange, err)
	}

	return newPublisher(func() (channel, error) { return conn.Channel() }, conn.Close, opts.Exchange, opts.Producer), nil
}

func newPublisher(open func() (channel, error), closeFn func() error, exchange, producer string) *Publisher {
	return &Publisher{
		open:     open,
		close:    closeFn,
		exchange: exchange,
		producer: producer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Publish はイベントを Envelope に包み、イベント種別をルーティングキーとして送出します。
func (p *Publisher) Publish(ctx context.Context, event orchestrator.Event) error {
	envelope := p.envelope(ctx, event)
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal %s: %w", event.Type, err)
	}

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}

	correlationID := ""
	if envelope.Meta.CorrelationID != nil {
		correlationID = *envelope.Meta.CorrelationID
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, event.Type, false, false, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     envelope.Meta.ID,
		CorrelationId: correlationID,
		Timestamp:     envelope.Meta.Time,
		Type:          event.Type,
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", event.Type, err)
	}
	if confirm != nil {
		acked, err := confirm.WaitContext(ctx)
		if err != nil {
			return fmt.Errorf("rabbitmq: wait confirm %s: %w", event.Type, err)
		}
		if !acked {
			return ErrNotAcknowledged
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("exchange", p.exchange).
		Str("key", event.Type).
		Str("event_id", envelope.Meta.ID).
		Msg("event published")
	return nil
}

func (p *Publisher) envelope(ctx context.Context, event orchestrator.Event) Envelope {
	meta := Meta{
		ID:   uuid.NewString(),
		Time: p.now(),
		Type: event.Type,
	}
	if id, ok := shared.CorrelationID(ctx); ok {
		meta.CorrelationID = &id
	} else {
		generated := uuid.NewString()
		meta.CorrelationID = &generated
	}
	if p.producer != "" {
		producer := p.producer
		meta.Producer = &producer
	}
	return Envelope{Meta: meta, Data: event.Data}
}

// Close は接続を閉じます。
func (p *Publisher) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// FallbackPublisher はブローカーに接続できない場合の代替で、イベントを警告ログに残して破棄します。
type FallbackPublisher struct {
	logger zerolog.Logger
}

var _ orchestrator.EventPublisher = (*FallbackPublisher)(nil)

// NewFallback は FallbackPublisher を生成します。
func NewFallback(logger zerolog.Logger) *FallbackPublisher {
	return &FallbackPublisher{logger: logger}
}

// Publish は送出をスキップします。
func (p *FallbackPublisher) Publish(_ context.Context, event orchestrator.Event) error {
	p.logger.Warn().Str("key", event.Type).Msg("event broker unavailable, publish skipped")
	return nil
}

// Close は何もしません。
func (p *FallbackPublisher) Close() error {
	return nil
}
