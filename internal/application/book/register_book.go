package book

import (
	"context"

	"github.com/xiebiao/library/internal/domain/book"
)

// RegisterBookUseCase 图书入馆登记用例
// 设计说明:
// 1. 应用层负责用例编排,协调领域服务完成业务流程
// 2. 输入输出使用DTO(Data Transfer Object),与HTTP层解耦
// 3. 此用例比较简单,只需调用领域服务即可
type RegisterBookUseCase struct {
	bookService book.Service
}

// NewRegisterBookUseCase 创建入馆登记用例
func NewRegisterBookUseCase(bookService book.Service) *RegisterBookUseCase {
	return &RegisterBookUseCase{
		bookService: bookService,
	}
}

// RegisterBookRequest 入馆登记请求DTO
type RegisterBookRequest struct {
	ISBN            string // ISBN号
	Title           string // 书名
	Author          string // 作者
	Publisher       string // 出版社
	Category        string // 分类
	PublicationYear int    // 出版年份
	TotalCopies     int    // 馆藏总副本数
	CoverURL        string // 封面图URL
	Description     string // 图书描述
}

// Execute 执行入馆登记用例
// 学习要点:
// 1. 应用层不直接操作Repository,通过领域服务间接操作
// 2. 业务规则校验由领域服务负责(ISBN格式、副本数下限等)
// 3. 应用层只负责流程编排
func (uc *RegisterBookUseCase) Execute(ctx context.Context, req RegisterBookRequest) (*BookResponse, error) {
	// 领域服务会处理:ISBN格式校验、副本数校验、ISBN重复检查等
	b, err := uc.bookService.RegisterBook(
		ctx,
		req.ISBN,
		req.Title,
		req.Author,
		req.Publisher,
		req.Category,
		req.PublicationYear,
		req.TotalCopies,
		req.CoverURL,
		req.Description,
	)
	if err != nil {
		return nil, err
	}

	return toBookResponse(b), nil
}
