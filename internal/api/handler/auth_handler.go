package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/internal/api/middleware"
	"github.com/d60-Lab/bookstore/internal/service"
	"github.com/d60-Lab/bookstore/pkg/response"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Email    string `json:"email" binding:"omitempty,email,max=100"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register 注册
// @Summary 用户注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body registerRequest true "注册信息"
// @Success 201 {object} response.Response{data=model.User}
// @Failure 400 {object} response.Response
// @Router /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	u, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, u)
}

// Login 登录
// @Summary 用户登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body loginRequest true "登录信息"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Failure 401 {object} response.Response
// @Router /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// RefreshToken 刷新令牌
// @Summary 刷新令牌（旧的刷新令牌随即失效）
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body refreshRequest true "刷新令牌"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Failure 401 {object} response.Response
// @Router /api/auth/refresh-token [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	res, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Logout 注销当前访问令牌
// @Summary 退出登录
// @Tags 认证
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetString(middleware.CtxToken)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
