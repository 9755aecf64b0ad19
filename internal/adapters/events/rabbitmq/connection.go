package rabbitmq

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// MaxDelay は再接続待ち時間の上限です。
const MaxDelay = time.Minute

// ConnectionOptions は接続リトライの設定です。
type ConnectionOptions struct {
	URL           string
	RetryAttempts int
	Delay         time.Duration
}

// DialWithRetry は指数バックオフで RabbitMQ への接続を試みます。
func DialWithRetry(ctx context.Context, opts ConnectionOptions) (*amqp.Connection, error) {
	var conn *amqp.Connection
	err := retry(ctx, opts.RetryAttempts, opts.Delay, func() error {
		c, err := amqp.Dial(opts.URL)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts <= 0 {
		attempts = 1
	}
	logger := zerolog.Ctx(ctx)

	var lastErr error
	for i := 1; i <= attempts; i++ {
		err := fn()
		if err == nil {
			if i > 1 {
				logger.Info().Int("attempt", i).Msg("rabbitmq connected")
			}
			return nil
		}
		lastErr = err
		if i == attempts {
			break
		}

		sleep := delay << (i - 1)
		if sleep > MaxDelay || sleep <= 0 {
			sleep = MaxDelay
		}
		logger.Warn().Err(err).Int("attempt", i).Dur("sleep", sleep).Msg("rabbitmq dial failed")

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("rabbitmq: dial cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("rabbitmq: connect failed after %d attempts: %w", attempts, lastErr)
}
