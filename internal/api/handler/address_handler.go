package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/bookstore/internal/model"
	"github.com/d60-Lab/bookstore/pkg/response"
)

type addressRequest struct {
	RecipientName  string `json:"recipient_name" binding:"required,max=50"`
	RecipientPhone string `json:"recipient_phone" binding:"required,phone"`
	Province       string `json:"province" binding:"required,max=50"`
	City           string `json:"city" binding:"required,max=50"`
	District       string `json:"district" binding:"required,max=50"`
	DetailAddress  string `json:"detail_address" binding:"required,max=255"`
}

func (r addressRequest) fields() model.AddressFields {
	return model.AddressFields{
		RecipientName:  r.RecipientName,
		RecipientPhone: r.RecipientPhone,
		Province:       r.Province,
		City:           r.City,
		District:       r.District,
		DetailAddress:  r.DetailAddress,
	}
}

// ListAddresses 收货地址列表，默认地址在前
// @Summary 地址列表
// @Tags 收货地址
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.UserAddress}
// @Router /api/user/addresses [get]
func (h *Handler) ListAddresses(c *gin.Context) {
	list, err := h.addressService.List(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []model.UserAddress{}
	}
	response.Success(c, list)
}

// CreateAddress 新增地址；首个地址自动成为默认
// @Summary 新增地址
// @Tags 收货地址
// @Security BearerAuth
// @Accept json
// @Param request body addressRequest true "地址"
// @Success 201 {object} response.Response{data=model.UserAddress}
// @Failure 400 {object} response.Response
// @Router /api/user/addresses [post]
func (h *Handler) CreateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.addressService.Create(c.Request.Context(), currentUser(c), req.fields())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, a)
}

// GetDefaultAddress 默认地址
// @Summary 默认地址
// @Tags 收货地址
// @Security BearerAuth
// @Success 200 {object} response.Response{data=model.UserAddress}
// @Failure 404 {object} response.Response
// @Router /api/user/addresses/default [get]
func (h *Handler) GetDefaultAddress(c *gin.Context) {
	a, err := h.addressService.GetDefault(c.Request.Context(), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, a)
}

// GetAddress 地址详情
// @Summary 地址详情
// @Tags 收货地址
// @Security BearerAuth
// @Param addressId path int true "地址ID"
// @Success 200 {object} response.Response{data=model.UserAddress}
// @Failure 404 {object} response.Response
// @Router /api/user/addresses/{addressId} [get]
func (h *Handler) GetAddress(c *gin.Context) {
	id, ok := pathID(c, "addressId")
	if !ok {
		return
	}
	a, err := h.addressService.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, a)
}

// UpdateAddress 修改地址内容，不改变默认标记
// @Summary 修改地址
// @Tags 收货地址
// @Security BearerAuth
// @Accept json
// @Param addressId path int true "地址ID"
// @Param request body addressRequest true "地址"
// @Success 200 {object} response.Response{data=model.UserAddress}
// @Failure 404 {object} response.Response
// @Router /api/user/addresses/{addressId} [put]
func (h *Handler) UpdateAddress(c *gin.Context) {
	id, ok := pathID(c, "addressId")
	if !ok {
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.addressService.Update(c.Request.Context(), currentUser(c), id, req.fields())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, a)
}

// SetDefaultAddress 设为默认
// @Summary 设为默认地址
// @Tags 收货地址
// @Security BearerAuth
// @Param addressId path int true "地址ID"
// @Success 200 {object} response.Response{data=model.UserAddress}
// @Failure 404 {object} response.Response
// @Router /api/user/addresses/{addressId}/default [patch]
func (h *Handler) SetDefaultAddress(c *gin.Context) {
	id, ok := pathID(c, "addressId")
	if !ok {
		return
	}
	a, err := h.addressService.SetDefault(c.Request.Context(), currentUser(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, a)
}

// DeleteAddress 删除地址；删除默认地址时最新的地址接替
// @Summary 删除地址
// @Tags 收货地址
// @Security BearerAuth
// @Param addressId path int true "地址ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/user/addresses/{addressId} [delete]
func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c, "addressId")
	if !ok {
		return
	}
	if err := h.addressService.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
