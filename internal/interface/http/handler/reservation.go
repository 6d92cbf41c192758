package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appreservation "github.com/xiebiao/library/internal/application/reservation"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// ReservationHandler 预约HTTP处理器
type ReservationHandler struct {
	createUseCase  *appreservation.CreateReservationUseCase
	cancelUseCase  *appreservation.CancelReservationUseCase
	confirmUseCase *appreservation.ConfirmReservationUseCase
	queryUseCase   *appreservation.ReservationQueryUseCase
}

// NewReservationHandler 创建预约处理器
func NewReservationHandler(
	createUseCase *appreservation.CreateReservationUseCase,
	cancelUseCase *appreservation.CancelReservationUseCase,
	confirmUseCase *appreservation.ConfirmReservationUseCase,
	queryUseCase *appreservation.ReservationQueryUseCase,
) *ReservationHandler {
	return &ReservationHandler{
		createUseCase:  createUseCase,
		cancelUseCase:  cancelUseCase,
		confirmUseCase: confirmUseCase,
		queryUseCase:   queryUseCase,
	}
}

// CreateReservation 创建预约
// @Summary      创建预约
// @Description  读者为自己排队预约,位次按先来后到
// @Tags         预约
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateReservationRequest true "预约信息"
// @Success      200 {object} response.Response{data=dto.ReservationResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "重复预约/已借该书"
// @Router       /api/v1/reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), appreservation.CreateReservationRequest{
		UserID: middleware.MustGetUserID(c),
		BookID: req.BookID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toReservationDTO(result))
}

// GetReservation 预约详情
// @Summary      预约详情
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=dto.ReservationResponse}
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "预约不存在"
// @Router       /api/v1/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservationID, err := parseIDParam(c)
	if err != nil {
		return
	}

	result, err := h.queryUseCase.Get(c.Request.Context(), reservationID, middleware.MustGetUserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toReservationDTO(result))
}

// ListReservations 预约列表
// @Summary      预约列表
// @Description  读者查询本人预约;馆员可按用户/图书/状态过滤
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        user_id query int false "按读者过滤(仅馆员)"
// @Param        book_id query int false "按图书过滤"
// @Param        status query string false "状态(PENDING/ACTIVE/EXPIRED/CANCELLED)"
// @Success      200 {object} response.Response
// @Router       /api/v1/reservations [get]
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	req := appreservation.ListReservationsRequest{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	}

	if middleware.IsStaff(c) {
		if raw := c.Query("user_id"); raw != "" {
			userID, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				response.ErrorWithCode(c, 40900, "非法的user_id参数")
				return
			}
			req.UserID = uint(userID)
		}
	} else {
		req.UserID = middleware.MustGetUserID(c)
	}

	if raw := c.Query("book_id"); raw != "" {
		bookID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.ErrorWithCode(c, 40900, "非法的book_id参数")
			return
		}
		req.BookID = uint(bookID)
	}

	result, err := h.queryUseCase.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.ReservationResponse, len(result.Reservations))
	for i, r := range result.Reservations {
		list[i] = toReservationDTO(r)
	}
	response.SuccessWithPage(c, list, result.Total, result.Page, result.PageSize)
}

// CancelReservation 取消预约
// @Summary      取消预约
// @Description  读者取消本人预约,馆员可代取消;取消后队列位次前移
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=dto.ReservationResponse}
// @Failure      403 {object} response.Response "无权取消"
// @Failure      422 {object} response.Response "预约已关闭,不能取消"
// @Router       /api/v1/reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	reservationID, err := parseIDParam(c)
	if err != nil {
		return
	}

	result, err := h.cancelUseCase.Execute(c.Request.Context(), appreservation.CancelReservationRequest{
		ReservationID: reservationID,
		ActorID:       middleware.MustGetUserID(c),
		IsStaff:       middleware.IsStaff(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toReservationDTO(result))
}

// ConfirmReservation 确认预约(馆员)
// @Summary      确认预约
// @Description  图书到馆后馆员确认队首预约,通知读者来馆取书
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=dto.ReservationResponse}
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      409 {object} response.Response "该图书暂无可借副本"
// @Failure      422 {object} response.Response "只有排队中的预约可以确认"
// @Router       /api/v1/reservations/{id}/confirm [post]
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	reservationID, err := parseIDParam(c)
	if err != nil {
		return
	}

	result, err := h.confirmUseCase.Execute(c.Request.Context(), reservationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toReservationDTO(result))
}

// GetQueuePosition 查询排队位次
// @Summary      查询排队位次
// @Description  位次从1起;预约不在排队队列中时返回0
// @Tags         预约
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "预约ID"
// @Success      200 {object} response.Response{data=dto.QueuePositionResponse}
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "预约不存在"
// @Router       /api/v1/reservations/{id}/position [get]
func (h *ReservationHandler) GetQueuePosition(c *gin.Context) {
	reservationID, err := parseIDParam(c)
	if err != nil {
		return
	}

	position, err := h.queryUseCase.QueuePosition(c.Request.Context(), reservationID, middleware.MustGetUserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.QueuePositionResponse{
		ReservationID: reservationID,
		Position:      position,
	})
}

func toReservationDTO(r *appreservation.ReservationResponse) *dto.ReservationResponse {
	return &dto.ReservationResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		BookID:          r.BookID,
		ReservationDate: r.ReservationDate,
		ExpiryDate:      r.ExpiryDate,
		Status:          r.Status,
		Priority:        r.Priority,
		NotifiedAt:      r.NotifiedAt,
		CreatedAt:       r.CreatedAt,
	}
}
