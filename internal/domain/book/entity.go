package book

import (
	"time"
)

// Book 图书实体(聚合根)
// DDD设计说明:
// 1. Book是图书聚合的根实体,同一ISBN的所有副本记为一行
// 2. TotalCopies/AvailableCopies构成馆藏台账:
//    不变式 0 <= AvailableCopies <= TotalCopies 必须始终成立
// 3. ISBN作为业务唯一标识(数据库层保证唯一性)
// 4. 并发借还场景下,台账的增减由Repository的条件UPDATE保证原子性;
//    实体方法只服务于单线程路径(馆员调整馆藏数等)
type Book struct {
	ID              uint
	ISBN            string // ISBN号(国际标准书号)
	Title           string // 书名
	Author          string // 作者
	Publisher       string // 出版社
	Category        string // 分类
	PublicationYear int    // 出版年份
	TotalCopies     int    // 馆藏总副本数
	AvailableCopies int    // 当前可借副本数
	CoverURL        string // 封面图片URL
	Description     string // 图书描述
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建新图书(工厂方法)
// 新入馆图书所有副本均可借:AvailableCopies = TotalCopies
func NewBook(isbn, title, author, publisher, category string, publicationYear, totalCopies int, coverURL, description string) *Book {
	now := time.Now()
	return &Book{
		ISBN:            isbn,
		Title:           title,
		Author:          author,
		Publisher:       publisher,
		Category:        category,
		PublicationYear: publicationYear,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
		CoverURL:        coverURL,
		Description:     description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsAvailable 是否还有可借副本
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// CopiesOnLoan 在借副本数
func (b *Book) CopiesOnLoan() int {
	return b.TotalCopies - b.AvailableCopies
}

// Borrow 借出一本(领域行为)
// 业务规则:无可借副本时拒绝
func (b *Book) Borrow() error {
	if b.AvailableCopies <= 0 {
		return ErrBookNotAvailable
	}
	b.AvailableCopies--
	b.UpdatedAt = time.Now()
	return nil
}

// ReturnCopy 归还一本(领域行为)
// 业务规则:可借数不能超过总数
func (b *Book) ReturnCopy() error {
	if b.AvailableCopies >= b.TotalCopies {
		return ErrInvalidCopies
	}
	b.AvailableCopies++
	b.UpdatedAt = time.Now()
	return nil
}

// MarkCopyLost 标记一本在借副本遗失(领域行为)
// 遗失的副本彻底退出流通:总数减1;可借数若大于0也减1
// 调整后 0 <= AvailableCopies <= TotalCopies 仍然成立
func (b *Book) MarkCopyLost() error {
	if b.TotalCopies <= 0 {
		return ErrInvalidCopies
	}
	b.TotalCopies--
	if b.AvailableCopies > 0 {
		b.AvailableCopies--
	}
	b.UpdatedAt = time.Now()
	return nil
}

// AdjustTotalCopies 调整馆藏总数(领域行为)
// 业务规则:新总数不能小于当前在借数(在借副本无法凭空消失)
// 可借数随总数变化同步调整:newAvailable = newTotal - onLoan
func (b *Book) AdjustTotalCopies(newTotal int) error {
	if newTotal < 0 {
		return ErrInvalidCopies
	}
	onLoan := b.CopiesOnLoan()
	if newTotal < onLoan {
		return ErrCopiesOnLoan
	}
	b.TotalCopies = newTotal
	b.AvailableCopies = newTotal - onLoan
	b.UpdatedAt = time.Now()
	return nil
}

// UpdateInfo 更新图书基本信息
func (b *Book) UpdateInfo(title, author, publisher, category, description string) {
	if title != "" {
		b.Title = title
	}
	if author != "" {
		b.Author = author
	}
	if publisher != "" {
		b.Publisher = publisher
	}
	if category != "" {
		b.Category = category
	}
	if description != "" {
		b.Description = description
	}
	b.UpdatedAt = time.Now()
}
