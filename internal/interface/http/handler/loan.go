package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apploan "github.com/xiebiao/library/internal/application/loan"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// LoanHandler 借阅HTTP处理器
// 权限说明:
// 1. 借阅登记/状态覆盖/删除记录是馆员操作(路由上挂RequireStaff)
// 2. 归还/续借/查询本人记录是读者操作,Handler传入操作者身份由应用层校验归属
type LoanHandler struct {
	createLoanUseCase   *apploan.CreateLoanUseCase
	returnLoanUseCase   *apploan.ReturnLoanUseCase
	renewLoanUseCase    *apploan.RenewLoanUseCase
	updateStatusUseCase *apploan.UpdateLoanStatusUseCase
	deleteLoanUseCase   *apploan.DeleteLoanUseCase
	loanQueryUseCase    *apploan.LoanQueryUseCase
}

// NewLoanHandler 创建借阅处理器
func NewLoanHandler(
	createLoanUseCase *apploan.CreateLoanUseCase,
	returnLoanUseCase *apploan.ReturnLoanUseCase,
	renewLoanUseCase *apploan.RenewLoanUseCase,
	updateStatusUseCase *apploan.UpdateLoanStatusUseCase,
	deleteLoanUseCase *apploan.DeleteLoanUseCase,
	loanQueryUseCase *apploan.LoanQueryUseCase,
) *LoanHandler {
	return &LoanHandler{
		createLoanUseCase:   createLoanUseCase,
		returnLoanUseCase:   returnLoanUseCase,
		renewLoanUseCase:    renewLoanUseCase,
		updateStatusUseCase: updateStatusUseCase,
		deleteLoanUseCase:   deleteLoanUseCase,
		loanQueryUseCase:    loanQueryUseCase,
	}
}

// CreateLoan 借阅登记
// @Summary      借阅登记
// @Description  馆员为读者办理借书,通过全部资格校验后扣减可借数
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateLoanRequest true "借阅信息"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      409 {object} response.Response "无可借副本/借阅上限/逾期未还/重复借阅"
// @Router       /api/v1/loans [post]
func (h *LoanHandler) CreateLoan(c *gin.Context) {
	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	ucReq := apploan.CreateLoanRequest{
		UserID: req.UserID,
		BookID: req.BookID,
		Notes:  req.Notes,
	}
	if req.LoanDate != "" {
		loanDate, err := time.Parse("2006-01-02", req.LoanDate)
		if err != nil {
			response.ErrorWithCode(c, 40900, "非法的借出日期")
			return
		}
		ucReq.LoanDate = &loanDate
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			response.ErrorWithCode(c, 40900, "非法的应还日期")
			return
		}
		ucReq.DueDate = &due
	}

	result, err := h.createLoanUseCase.Execute(c.Request.Context(), ucReq)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toLoanDTO(result))
}

// GetLoan 借阅详情
// @Summary      借阅详情
// @Description  读者只能查看自己的借阅,馆员可查看所有
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/{id} [get]
func (h *LoanHandler) GetLoan(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		return
	}

	result, err := h.loanQueryUseCase.Get(c.Request.Context(), loanID, middleware.MustGetUserID(c), middleware.IsStaff(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toLoanDTO(result))
}

// ListLoans 借阅列表
// @Summary      借阅列表
// @Description  读者查询本人借阅;馆员可按用户/图书/状态/日期范围过滤
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        user_id query int false "按读者过滤(仅馆员)"
// @Param        book_id query int false "按图书过滤"
// @Param        status query string false "状态(ACTIVE/RETURNED/OVERDUE/LOST/CANCELLED)"
// @Param        from query string false "借出日期下限(YYYY-MM-DD,含)"
// @Param        to query string false "借出日期上限(YYYY-MM-DD,不含)"
// @Success      200 {object} response.Response
// @Router       /api/v1/loans [get]
func (h *LoanHandler) ListLoans(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	req := apploan.ListLoansRequest{
		Page:     page,
		PageSize: pageSize,
		Status:   c.Query("status"),
	}

	// 普通读者只能查自己的借阅,馆员可以按user_id过滤
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
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.ErrorWithCode(c, 40900, "非法的from参数")
			return
		}
		req.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.ErrorWithCode(c, 40900, "非法的to参数")
			return
		}
		req.To = &to
	}

	loans, total, err := h.loanQueryUseCase.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.LoanResponse, len(loans))
	for i, l := range loans {
		list[i] = toLoanDTO(l)
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// ReturnLoan 归还
// @Summary      归还图书
// @Description  读者归还本人借阅,馆员可代还;逾期归还结算罚款
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      403 {object} response.Response "无权归还"
// @Failure      422 {object} response.Response "不在可归还状态"
// @Router       /api/v1/loans/{id}/return [post]
func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		return
	}

	result, err := h.returnLoanUseCase.Execute(c.Request.Context(), apploan.ReturnLoanRequest{
		LoanID:  loanID,
		ActorID: middleware.MustGetUserID(c),
		IsStaff: middleware.IsStaff(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toLoanDTO(result))
}

// RenewLoan 续借
// @Summary      续借
// @Description  在借且未逾期、无罚款、有续借余量且无人排队时顺延应还日期
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      403 {object} response.Response "无权续借"
// @Failure      422 {object} response.Response "不符合续借条件"
// @Router       /api/v1/loans/{id}/renew [post]
func (h *LoanHandler) RenewLoan(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		return
	}

	result, err := h.renewLoanUseCase.Execute(c.Request.Context(), apploan.RenewLoanRequest{
		LoanID:  loanID,
		ActorID: middleware.MustGetUserID(c),
		IsStaff: middleware.IsStaff(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toLoanDTO(result))
}

// UpdateLoanStatus 状态覆盖(馆员)
// @Summary      借阅状态覆盖
// @Description  馆员标记逾期/遗失/取消或代为归还,台账随目标状态联动
// @Tags         借阅
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Param        request body dto.UpdateLoanStatusRequest true "目标状态"
// @Success      200 {object} response.Response{data=dto.LoanResponse}
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      422 {object} response.Response "非法的状态转换"
// @Router       /api/v1/loans/{id}/status [put]
func (h *LoanHandler) UpdateLoanStatus(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req dto.UpdateLoanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateStatusUseCase.Execute(c.Request.Context(), apploan.UpdateLoanStatusRequest{
		LoanID: loanID,
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toLoanDTO(result))
}

// DeleteLoan 清除借阅记录(馆员)
// @Summary      清除借阅记录
// @Description  只有已还/遗失/已取消的记录可以删除
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      422 {object} response.Response "非终态记录不能删除"
// @Router       /api/v1/loans/{id} [delete]
func (h *LoanHandler) DeleteLoan(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		return
	}

	if err := h.deleteLoanUseCase.Execute(c.Request.Context(), loanID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已删除"})
}

// CanRenew 续借资格查询
// @Summary      续借资格查询
// @Description  综合状态/次数/罚款/逾期和排队情况判断当前能否续借
// @Tags         借阅
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "借阅ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "借阅记录不存在"
// @Router       /api/v1/loans/{id}/can-renew [get]
func (h *LoanHandler) CanRenew(c *gin.Context) {
	loanID, err := parseIDParam(c)
	if err != nil {
		return
	}

	ok, err := h.loanQueryUseCase.CanRenew(c.Request.Context(), loanID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"loan_id": loanID, "can_renew": ok})
}

func toLoanDTO(l *apploan.LoanResponse) *dto.LoanResponse {
	return &dto.LoanResponse{
		ID:           l.ID,
		UserID:       l.UserID,
		BookID:       l.BookID,
		LoanDate:     l.LoanDate,
		DueDate:      l.DueDate,
		ReturnDate:   l.ReturnDate,
		Status:       l.Status,
		RenewalCount: l.RenewalCount,
		FineAmount:   l.FineAmount,
		FineYuan:     l.FineYuan,
		Notes:        l.Notes,
		IsOverdue:    l.IsOverdue,
		DaysOverdue:  l.DaysOverdue,
		CanRenew:     l.CanRenew,
		CreatedAt:    l.CreatedAt,
	}
}
