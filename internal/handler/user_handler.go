package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/daybook/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	Get(ctx context.Context, userID string) (*model.User, error)
	UpdateTimezone(ctx context.Context, userID, timezone string) (*model.User, error)
}

// UserHandler はユーザープロフィールのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

type timezoneUpdateRequest struct {
	Timezone string `json:"timezone"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Timezone  string    `json:"timezone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Timezone:  u.Timezone,
		CreatedAt: u.CreatedAt,
	}
}

// --- ハンドラー ---

// GetProfile は認証済みユーザーのプロフィールを返す。
// GET /api/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// UpdateTimezone はプロフィールのタイムゾーンを更新する。
// PUT /api/users/me/timezone
func (h *UserHandler) UpdateTimezone(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req timezoneUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateTimezone(r.Context(), userID, req.Timezone)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(updated))
}
