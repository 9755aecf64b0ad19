package server

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-crm/internal/core/shared"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// RequestIDHeader は相関 ID を運ぶメタデータキーです。
const RequestIDHeader = "x-request-id"

// CorrelationUnaryInterceptor は受信メタデータの x-request-id を相関 ID としてコンテキストへ設定します。
// 無い場合は新しい ID を払い出し、応答ヘッダーにも返します。
func CorrelationUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(RequestIDHeader); len(values) > 0 {
				id = values[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(shared.WithCorrelationID(ctx, id), req)
	}
}

// LoggingUnaryInterceptor はリクエスト単位のロガーをコンテキストに載せ、完了時にステータスと所要時間を記録します。
func LoggingUnaryInterceptor(base zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		lc := base.With().Str("method", info.FullMethod)
		if id, ok := shared.CorrelationID(ctx); ok {
			lc = lc.Str("request_id", id)
		}
		logger := lc.Logger()
		ctx = logger.WithContext(ctx)

		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		event := logger.Info()
		switch code {
		case codes.OK, codes.NotFound, codes.InvalidArgument, codes.AlreadyExists, codes.FailedPrecondition:
		case codes.Aborted:
			event = logger.Warn()
		default:
			event = logger.Error().Err(err)
		}
		event.Str("code", code.String()).Dur("duration", time.Since(start)).Msg("grpc request")
		return resp, err
	}
}

// RecoveryUnaryInterceptor はハンドラーのパニックを codes.Internal に変換します。
func RecoveryUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				zerolog.Ctx(ctx).Error().
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("grpc handler panicked")
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
