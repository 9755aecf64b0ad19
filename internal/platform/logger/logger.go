// Package logger はアプリケーション全体で使う zerolog.Logger を構築します。
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ogurasousui/codex-crm/internal/platform/config"
	"github.com/rs/zerolog"
)

// New は設定に従って Logger を生成します。w が nil の場合は標準エラー出力に書き込みます。
func New(cfg config.LoggerConfig, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("logger: level %q: %w", cfg.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "codex-crm").
		Logger(), nil
}
