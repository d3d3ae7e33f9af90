package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/dognews/internal/model"
	"github.com/hitoshi/dognews/internal/news"
)

// NewsServiceInterface はニュースハンドラーが必要とするサービスインターフェース。
type NewsServiceInterface interface {
	// Refresh は取り込みパイプラインを1回実行する。
	Refresh(ctx context.Context) (*news.RefreshResult, error)
	// Latest は最新スナップショットから表示用記事を返す。
	Latest(ctx context.Context) *news.NewsPage
}

// NewsHandler はニュース取得・取り込みトリガーのHTTPハンドラー。
type NewsHandler struct {
	service NewsServiceInterface
	// cronSecret が空でない場合、POSTトリガーにBearerトークン認証を要求する。
	cronSecret string
}

// NewNewsHandler はNewsHandlerを生成する。
func NewNewsHandler(service NewsServiceInterface, cronSecret string) *NewsHandler {
	return &NewsHandler{
		service:    service,
		cronSecret: cronSecret,
	}
}

// --- レスポンス型 ---

// newsPageResponse はニュース一覧のレスポンス。
type newsPageResponse struct {
	Articles    []model.Article `json:"articles"`
	LastUpdated *time.Time      `json:"lastUpdated"`
	TotalCount  int             `json:"totalCount"`
	Message     string          `json:"message,omitempty"`
}

// refreshResponse は取り込みトリガーのレスポンス。
type refreshResponse struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	TotalCount  int       `json:"totalCount"`
	LastUpdated time.Time `json:"lastUpdated"`
	ElapsedTime string    `json:"elapsedTime"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンスボディ。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// GetNews は最新のニュース記事一覧を取得する。
// GET /api/news
func (h *NewsHandler) GetNews(w http.ResponseWriter, r *http.Request) {
	page := h.service.Latest(r.Context())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(newsPageResponse{
		Articles:    page.Articles,
		LastUpdated: page.LastUpdated,
		TotalCount:  page.TotalCount,
		Message:     page.Message,
	})
}

// RefreshNews はニュース取り込みを手動トリガーする。
// POST /api/news
//
// CRON_SECRETが設定されている場合、Authorization: Bearer <secret> が必須。
func (h *NewsHandler) RefreshNews(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	result, err := h.service.Refresh(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(refreshResponse{
		Success:     result.Success,
		Message:     result.Message,
		TotalCount:  result.TotalCount,
		LastUpdated: result.LastUpdated,
		ElapsedTime: fmt.Sprintf("%.2f秒", result.Elapsed.Seconds()),
	})
}

// authorized はトリガーリクエストの認証を検証する。
// シークレット未設定の場合は常に許可する。
func (h *NewsHandler) authorized(r *http.Request) bool {
	if h.cronSecret == "" {
		return true
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) == 1
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, model.NewInternalError())
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeSnapshotWrite:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
