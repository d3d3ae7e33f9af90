// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, news, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeSnapshotWrite = "SNAPSHOT_WRITE_FAILED"
	ErrCodeInternal      = "INTERNAL_ERROR"
)

// NewUnauthorizedError はトリガー認証失敗エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証に失敗しました。",
		Category: "auth",
		Action:   "正しい認証トークンをAuthorizationヘッダーに指定してください。",
	}
}

// NewSnapshotWriteError はスナップショット書き込み失敗エラーを生成する。
// 取り込みパイプラインで唯一、呼び出し元に伝播する失敗クラス。
func NewSnapshotWriteError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeSnapshotWrite,
		Message:  fmt.Sprintf("ニューススナップショットの保存に失敗しました: %s", reason),
		Category: "system",
		Action:   "ストレージの空き容量と書き込み権限を確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
