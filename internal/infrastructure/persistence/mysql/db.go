package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	// 学习要点：合理的连接池配置对性能至关重要
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	// 最大打开连接数（建议：CPU核数 * 2 + 磁盘数量）
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	// 最大空闲连接数（建议：MaxOpenConns的1/4到1/2）
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// 连接最大存活时间（防止数据库主动断开连接）
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// autoMigrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 生产环境应使用版本化的迁移脚本，不要依赖AutoMigrate
func autoMigrate(db *gorm.DB) error {
	// 定义需要迁移的模型
	// 注意：这里需要使用GORM的模型定义（带tag），不是domain层的实体
	return db.AutoMigrate(
		&UserModel{},
		&BookModel{},
		&LoanModel{},
		&ReservationModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID        uint           `gorm:"primaryKey"`
	Username  string         `gorm:"uniqueIndex;size:50;not null;comment:用户名"`
	Email     string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password  string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	FirstName string         `gorm:"size:50;comment:名"`
	LastName  string         `gorm:"size:50;comment:姓"`
	Role      string         `gorm:"size:20;not null;default:USER;comment:角色(USER/LIBRARIAN/ADMIN)"`
	IsActive  bool           `gorm:"not null;default:true;comment:是否激活"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "users"
}

// BookModel GORM图书模型
// 设计说明:
// 1. AvailableCopies/TotalCopies是馆藏台账,只能通过仓储的原子操作修改
// 2. ISBN有唯一索引,防止重复
// 3. 添加复合索引优化列表查询性能
type BookModel struct {
	ID              uint           `gorm:"primaryKey"`
	ISBN            string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title           string         `gorm:"index:idx_search;size:200;not null;comment:书名"` // 搜索索引
	Author          string         `gorm:"index:idx_search;size:100;not null;comment:作者"` // 搜索索引
	Publisher       string         `gorm:"size:100;comment:出版社"`
	Category        string         `gorm:"index;size:50;comment:分类"`
	PublicationYear int            `gorm:"comment:出版年份"`
	TotalCopies     int            `gorm:"not null;default:0;comment:馆藏总数"`
	AvailableCopies int            `gorm:"index;not null;default:0;comment:可借数量"` // 可借过滤索引
	CoverURL        string         `gorm:"size:500;comment:封面图片URL"`
	Description     string         `gorm:"type:text;comment:图书描述"`
	CreatedAt       time.Time      `gorm:"index;comment:创建时间"` // 排序索引
	UpdatedAt       time.Time      `gorm:"comment:更新时间"`
	DeletedAt       gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

// TableName 指定表名
func (BookModel) TableName() string {
	return "books"
}

// LoanModel GORM借阅模型
// 教学要点:
// 1. Status使用int存储(节省空间,便于索引)
// 2. (user_id, status)复合索引服务资格校验的计数查询
// 3. (status, due_date)复合索引服务逾期过滤查询
type LoanModel struct {
	ID           uint       `gorm:"primaryKey"`
	UserID       uint       `gorm:"index:idx_user_status;not null;comment:读者用户ID"`
	BookID       uint       `gorm:"index;not null;comment:图书ID"`
	LoanDate     time.Time  `gorm:"not null;comment:借出日期"`
	DueDate      time.Time  `gorm:"index:idx_status_due,priority:2;not null;comment:应还日期"`
	ReturnDate   *time.Time `gorm:"comment:实际归还日期"`
	Status       int        `gorm:"index:idx_user_status;index:idx_status_due,priority:1;type:tinyint;default:1;comment:借阅状态(1在借2已还3逾期4遗失5取消)"`
	RenewalCount int        `gorm:"not null;default:0;comment:已续借次数"`
	FineAmount   int64      `gorm:"not null;default:0;comment:罚款金额(分)"`
	Notes        string     `gorm:"size:500;comment:馆员备注"`
	CreatedAt    time.Time  `gorm:"index;comment:创建时间"`
	UpdatedAt    time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (LoanModel) TableName() string {
	return "loans"
}

// ReservationModel GORM预约模型
// 教学要点:
// 1. (book_id, status)复合索引服务队列查询与位次计算
// 2. (status, expiry_date)复合索引服务过期清扫任务
type ReservationModel struct {
	ID              uint       `gorm:"primaryKey"`
	UserID          uint       `gorm:"index;not null;comment:读者用户ID"`
	BookID          uint       `gorm:"index:idx_book_status;not null;comment:图书ID"`
	ReservationDate time.Time  `gorm:"not null;comment:预约时间"`
	ExpiryDate      time.Time  `gorm:"index:idx_status_expiry,priority:2;not null;comment:排队有效期"`
	Status          int        `gorm:"index:idx_book_status;index:idx_status_expiry,priority:1;type:tinyint;default:1;comment:预约状态(1排队2已确认3过期4取消)"`
	Priority        int        `gorm:"not null;default:1;comment:队列位次"`
	NotifiedAt      *time.Time `gorm:"comment:最近通知时间"`
	CreatedAt       time.Time  `gorm:"comment:创建时间"`
	UpdatedAt       time.Time  `gorm:"comment:更新时间"`
}

// TableName 指定表名
func (ReservationModel) TableName() string {
	return "reservations"
}
