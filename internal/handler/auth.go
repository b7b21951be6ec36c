package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"CrewWatch/internal/middleware"
	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/service"
	"CrewWatch/pkg/response"
)

// AuthHandler 认证相关接口
type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register 注册操作员账号
// POST /v1/auth/register
func (h *AuthHandler) Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	user, err := h.svc.Register(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, user)
}

// Login 登录
// POST /v1/auth/login
func (h *AuthHandler) Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Login(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// Refresh 刷新令牌
// POST /v1/auth/token/refresh
func (h *AuthHandler) Refresh(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := h.svc.Refresh(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// Logout 登出，吊销 refresh token
// POST /v1/auth/logout
func (h *AuthHandler) Logout(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserIDInt64(ctx, c)
	if !ok {
		response.Error(ctx, c, errUnauthorized())
		return
	}

	if err := h.svc.Logout(ctx, userID); err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.NoContent(ctx, c)
}
