package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/library/internal/application/book"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	registerBookUseCase *appbook.RegisterBookUseCase
	listBooksUseCase    *appbook.ListBooksUseCase
	manageBookUseCase   *appbook.ManageBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	registerBookUseCase *appbook.RegisterBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	manageBookUseCase *appbook.ManageBookUseCase,
) *BookHandler {
	return &BookHandler{
		registerBookUseCase: registerBookUseCase,
		listBooksUseCase:    listBooksUseCase,
		manageBookUseCase:   manageBookUseCase,
	}
}

// RegisterBook 图书入馆登记
// @Summary      图书入馆登记
// @Description  馆员登记新书入馆,初始可借数等于总副本数
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RegisterBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) RegisterBook(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.RegisterBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 2. 调用应用层用例
	result, err := h.registerBookUseCase.Execute(c.Request.Context(), appbook.RegisterBookRequest{
		ISBN:            req.ISBN,
		Title:           req.Title,
		Author:          req.Author,
		Publisher:       req.Publisher,
		Category:        req.Category,
		PublicationYear: req.PublicationYear,
		TotalCopies:     req.TotalCopies,
		CoverURL:        req.CoverURL,
		Description:     req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// 3. 构建HTTP响应
	response.Success(c, toBookDTO(result))
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  分页查询馆藏图书,支持关键词搜索、分类过滤、仅看可借
// @Tags         图书
// @Produce      json
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Param        keyword query string false "搜索关键词(标题/作者/ISBN)"
// @Param        category query string false "分类"
// @Param        available_only query bool false "仅显示有可借副本的图书"
// @Param        sort_by query string false "排序(title_asc/author_asc/created_at_desc)"
// @Success      200 {object} response.Response
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	availableOnly, _ := strconv.ParseBool(c.DefaultQuery("available_only", "false"))

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:          page,
		PageSize:      pageSize,
		Keyword:       c.Query("keyword"),
		Category:      c.Query("category"),
		AvailableOnly: availableOnly,
		SortBy:        c.Query("sort_by"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]dto.BookListItem, len(result.List))
	for i, b := range result.List {
		list[i] = dto.BookListItem{
			ID:              b.ID,
			ISBN:            b.ISBN,
			Title:           b.Title,
			Author:          b.Author,
			Publisher:       b.Publisher,
			Category:        b.Category,
			TotalCopies:     b.TotalCopies,
			AvailableCopies: b.AvailableCopies,
			CoverURL:        b.CoverURL,
			CreatedAt:       b.CreatedAt,
		}
	}
	response.SuccessWithPage(c, list, result.Total, result.Page, result.PageSize)
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		return
	}

	result, err := h.manageBookUseCase.Get(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookDTO(result))
}

// UpdateBook 修改图书信息
// @Summary      修改图书信息
// @Description  馆员修改图书基本信息,不影响台账字段
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "图书信息"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [put]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageBookUseCase.Update(c.Request.Context(), appbook.UpdateBookRequest{
		BookID:      bookID,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookDTO(result))
}

// AdjustCopies 调整馆藏总数
// @Summary      调整馆藏总数
// @Description  新总数不能小于当前在借数
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.AdjustCopiesRequest true "新馆藏总数"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      422 {object} response.Response "新总数小于在借数"
// @Router       /api/v1/books/{id}/copies [put]
func (h *BookHandler) AdjustCopies(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		return
	}

	var req dto.AdjustCopiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.manageBookUseCase.AdjustCopies(c.Request.Context(), bookID, req.TotalCopies)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, toBookDTO(result))
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Description  存在未归还借阅时拒绝删除
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "需要馆员权限"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "存在未归还借阅"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	bookID, err := parseIDParam(c)
	if err != nil {
		return
	}

	if err := h.manageBookUseCase.Delete(c.Request.Context(), bookID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "已删除"})
}

func toBookDTO(b *appbook.BookResponse) *dto.BookResponse {
	return &dto.BookResponse{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		Category:        b.Category,
		PublicationYear: b.PublicationYear,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		CopiesOnLoan:    b.CopiesOnLoan,
		IsAvailable:     b.IsAvailable,
		CoverURL:        b.CoverURL,
		Description:     b.Description,
		CreatedAt:       b.CreatedAt,
	}
}
