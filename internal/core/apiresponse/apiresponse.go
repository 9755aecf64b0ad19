// Package apiresponse はトランスポートに依存しない応答エンベロープを定義します。
package apiresponse

import (
	"net/http"

	"github.com/ogurasousui/codex-crm/internal/core/validation"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	// DefaultMessage はメッセージ未指定時に設定される文言です。
	DefaultMessage = "No message provided"
)

// APIResponse は全 API 共通の応答形式です。空のフィールドは出力しません。
type APIResponse[T any] struct {
	Status     string                  `json:"status"`
	StatusCode int                     `json:"statusCode"`
	Message    string                  `json:"message,omitempty"`
	Errors     []validation.FieldError `json:"errors,omitempty"`
	Data       *T                      `json:"data,omitempty"`
}

// Page は一覧応答のデータ部です。
type Page[T any] struct {
	Items         []T    `json:"items"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// Success は成功応答を生成します。
func Success[T any](statusCode int, message string, data T) APIResponse[T] {
	return APIResponse[T]{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Message:    messageOrDefault(message),
		Data:       &data,
	}
}

// OK は 200 の成功応答を生成します。
func OK[T any](message string, data T) APIResponse[T] {
	return Success(http.StatusOK, message, data)
}

// Created は 201 の成功応答を生成します。
func Created[T any](message string, data T) APIResponse[T] {
	return Success(http.StatusCreated, message, data)
}

// Message はデータを持たない成功応答を生成します。
func Message(statusCode int, message string) APIResponse[struct{}] {
	return APIResponse[struct{}]{
		Status:     StatusSuccess,
		StatusCode: statusCode,
		Message:    messageOrDefault(message),
	}
}

// Error はエラー応答を生成します。
func Error(statusCode int, message string, fields ...validation.FieldError) APIResponse[struct{}] {
	return APIResponse[struct{}]{
		Status:     StatusError,
		StatusCode: statusCode,
		Message:    messageOrDefault(message),
		Errors:     fields,
	}
}

// NewPage は Page を生成します。Items は nil の場合でも空配列として出力されます。
func NewPage[T any](items []T, nextPageToken string) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, NextPageToken: nextPageToken}
}

func messageOrDefault(message string) string {
	if message == "" {
		return DefaultMessage
	}
	return message
}
