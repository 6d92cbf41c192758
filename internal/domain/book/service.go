package book

import (
	"context"
	"regexp"
)

// Service 图书领域服务接口
// 设计说明:
// 1. 领域服务封装跨实体的业务逻辑和业务规则校验
// 2. 不依赖具体的Repository实现(依赖倒置)
// 3. 权限控制(馆员/管理员)在interface层的中间件完成,领域服务只关心业务规则
type Service interface {
	// RegisterBook 图书入馆登记
	// 业务规则:
	// - ISBN格式必须合法(10位或13位数字)
	// - 总副本数必须>=1
	// - ISBN不能重复
	RegisterBook(ctx context.Context, isbn, title, author, publisher, category string, publicationYear, totalCopies int, coverURL, description string) (*Book, error)

	// GetBookByID 根据ID获取图书详情
	GetBookByID(ctx context.Context, id uint) (*Book, error)

	// GetBookByISBN 根据ISBN获取图书
	GetBookByISBN(ctx context.Context, isbn string) (*Book, error)

	// UpdateBookInfo 更新图书信息
	UpdateBookInfo(ctx context.Context, id uint, title, author, publisher, category, description string) error

	// AdjustTotalCopies 调整馆藏总数
	// 业务规则:新总数不能小于当前在借数
	AdjustTotalCopies(ctx context.Context, id uint, newTotal int) error

	// DeleteBook 删除图书
	// 业务规则:存在未归还借阅时不能删除(由应用层校验后调用)
	DeleteBook(ctx context.Context, id uint) error

	// ListBooks 分页查询图书列表
	// 公开接口,不需要权限校验
	ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// service 领域服务实现
type service struct {
	repo Repository
}

// NewService 创建图书领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// RegisterBook 图书入馆登记
func (s *service) RegisterBook(ctx context.Context, isbn, title, author, publisher, category string, publicationYear, totalCopies int, coverURL, description string) (*Book, error) {
	// 1. ISBN格式校验
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}

	// 2. 副本数校验
	if totalCopies < 1 {
		return nil, ErrInvalidCopies
	}

	// 3. 检查ISBN是否已存在(Repository会处理重复错误)
	existingBook, err := s.repo.FindByISBN(ctx, isbn)
	if err == nil && existingBook != nil {
		return nil, ErrISBNDuplicate
	}
	// 如果是ErrBookNotFound以外的错误,返回
	if err != nil && err != ErrBookNotFound {
		return nil, err
	}

	// 4. 创建图书实体
	book := NewBook(isbn, title, author, publisher, category, publicationYear, totalCopies, coverURL, description)

	// 5. 持久化
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	return book, nil
}

// GetBookByID 根据ID获取图书
func (s *service) GetBookByID(ctx context.Context, id uint) (*Book, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBookByISBN 根据ISBN获取图书
func (s *service) GetBookByISBN(ctx context.Context, isbn string) (*Book, error) {
	if !isValidISBN(isbn) {
		return nil, ErrInvalidISBN
	}
	return s.repo.FindByISBN(ctx, isbn)
}

// UpdateBookInfo 更新图书信息
func (s *service) UpdateBookInfo(ctx context.Context, id uint, title, author, publisher, category, description string) error {
	// 1. 查询图书
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	// 2. 更新信息
	book.UpdateInfo(title, author, publisher, category, description)

	// 3. 持久化
	return s.repo.Update(ctx, book)
}

// AdjustTotalCopies 调整馆藏总数
// 注意:必须在行锁保护下读改写,防止调整期间并发借还破坏台账
func (s *service) AdjustTotalCopies(ctx context.Context, id uint, newTotal int) error {
	// 1. 锁定图书行
	book, err := s.repo.LockByID(ctx, id)
	if err != nil {
		return err
	}

	// 2. 领域行为校验并调整
	if err := book.AdjustTotalCopies(newTotal); err != nil {
		return err
	}

	// 3. 持久化
	return s.repo.Update(ctx, book)
}

// DeleteBook 删除图书
func (s *service) DeleteBook(ctx context.Context, id uint) error {
	// 1. 查询图书(确认存在)
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	// 2. 执行删除(软删除)
	return s.repo.Delete(ctx, id)
}

// ListBooks 分页查询图书列表
func (s *service) ListBooks(ctx context.Context, params ListParams) ([]*Book, int64, error) {
	return s.repo.List(ctx, params)
}

// =========================================
// 辅助函数:业务规则校验
// =========================================

// isValidISBN 校验ISBN格式
// 支持:
// - ISBN-10: 10位数字,如9787115428028的前10位
// - ISBN-13: 13位数字,如9787115428028
// 简化实现:只检查位数和是否全为数字(生产环境应校验校验位)
func isValidISBN(isbn string) bool {
	// 去除可能的分隔符(如978-7-115-42802-8 → 9787115428028)
	re := regexp.MustCompile(`[^0-9]`)
	cleanISBN := re.ReplaceAllString(isbn, "")

	// 检查位数
	length := len(cleanISBN)
	if length != 10 && length != 13 {
		return false
	}

	// 检查是否全为数字(已通过正则替换保证)
	return true
}
