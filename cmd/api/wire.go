//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/reservation"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/notification"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/metrics"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
	provideNotifier,
	provideClock,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewLoanRepository,
	mysql.NewReservationRepository,
	mysql.NewTxManager,
	// 各应用包声明自己的TxManager接口,统一绑定到mysql实现
	wire.Bind(new(appbook.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(apploan.TxManager), new(*mysql.TxManager)),
	wire.Bind(new(appreservation.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	provideLoanPolicy,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewProfileUseCase,
	appbook.NewRegisterBookUseCase,
	appbook.NewListBooksUseCase,
	appbook.NewManageBookUseCase,
	apploan.NewCreateLoanUseCase,
	apploan.NewReturnLoanUseCase,
	apploan.NewRenewLoanUseCase,
	apploan.NewUpdateLoanStatusUseCase,
	apploan.NewDeleteLoanUseCase,
	apploan.NewLoanQueryUseCase,
	provideCreateReservationUseCase,
	appreservation.NewCancelReservationUseCase,
	appreservation.NewConfirmReservationUseCase,
	appreservation.NewReservationQueryUseCase,
	appreservation.NewExpireReservationsUseCase,
	appreservation.NewNotifyAvailableReservationsUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewLoanHandler,
	handler.NewReservationHandler,
)

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideNotifier 按配置选择通知驱动(log/amqp)
func provideNotifier(cfg *config.Config) (notification.Notifier, error) {
	return notification.New(cfg.Notification)
}

// provideClock 生产环境统一使用系统时钟
func provideClock() clock.Clock {
	return clock.System()
}

// provideLoanPolicy 借阅策略阈值来自配置
func provideLoanPolicy(cfg *config.Config) loan.Policy {
	return loan.Policy{
		MaxActiveLoans: cfg.Loan.MaxActiveLoans,
		MaxRenewals:    cfg.Loan.MaxRenewals,
		DurationDays:   cfg.Loan.DurationDays,
		FineRateCents:  cfg.Loan.FineRateCents,
	}
}

// provideCreateReservationUseCase 预约有效期参数是裸time.Duration,
// Wire无法区分来源,所以手动组装这个用例
func provideCreateReservationUseCase(
	reservationRepo reservation.Repository,
	loanRepo loan.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	txManager appreservation.TxManager,
	clk clock.Clock,
	cfg *config.Config,
) *appreservation.CreateReservationUseCase {
	return appreservation.NewCreateReservationUseCase(
		reservationRepo, loanRepo, bookRepo, userRepo, txManager, clk,
		cfg.Reservation.ExpireAfter,
	)
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	loanHandler *handler.LoanHandler,
	reservationHandler *handler.ReservationHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Metrics中间件依赖已注册的采集器
	metrics.InitMetrics()

	r := gin.Default()
	r.Use(middleware.Metrics())
	registerRoutes(r, userHandler, bookHandler, loanHandler, reservationHandler, authMiddleware)
	return r
}

// InitializeApp 初始化整个应用
// Wire会在wire_gen.go中生成实际的初始化代码,这里的返回值是占位符
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)
	return nil, nil
}
