package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/xiebiao/library/docs"
	appbook "github.com/xiebiao/library/internal/application/book"
	apploan "github.com/xiebiao/library/internal/application/loan"
	appreservation "github.com/xiebiao/library/internal/application/reservation"
	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/config"
	"github.com/xiebiao/library/internal/infrastructure/notification"
	"github.com/xiebiao/library/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/library/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/internal/scheduler"
	"github.com/xiebiao/library/pkg/clock"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/tracing"
)

// main 主程序入口
// 说明：手动依赖注入,Wire的生成版见wire.go
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 注册Prometheus指标,必须在中间件和清扫任务启动前完成
	metrics.InitMetrics()

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 3. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化分布式追踪(可选)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化追踪失败: %v", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Printf("关闭追踪失败: %v", err)
			}
		}()
	}

	// 5. 依赖注入（手动组装）
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	loanRepo := mysql.NewLoanRepository(db)
	reservationRepo := mysql.NewReservationRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
	notifier, err := notification.New(cfg.Notification)
	if err != nil {
		log.Fatalf("初始化通知器失败: %v", err)
	}
	clk := clock.System()

	// 借阅策略阈值来自配置
	policy := loan.Policy{
		MaxActiveLoans: cfg.Loan.MaxActiveLoans,
		MaxRenewals:    cfg.Loan.MaxRenewals,
		DurationDays:   cfg.Loan.DurationDays,
		FineRateCents:  cfg.Loan.FineRateCents,
	}

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService, userRepo)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)
	profileUseCase := appuser.NewProfileUseCase(userRepo)

	registerBookUseCase := appbook.NewRegisterBookUseCase(bookService)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	manageBookUseCase := appbook.NewManageBookUseCase(bookService, loanRepo, txManager)

	createLoanUseCase := apploan.NewCreateLoanUseCase(loanRepo, bookRepo, userRepo, txManager, notifier, clk, policy)
	returnLoanUseCase := apploan.NewReturnLoanUseCase(loanRepo, bookRepo, txManager, clk, policy)
	renewLoanUseCase := apploan.NewRenewLoanUseCase(loanRepo, reservationRepo, txManager, clk, policy)
	updateStatusUseCase := apploan.NewUpdateLoanStatusUseCase(loanRepo, bookRepo, txManager, clk, policy)
	deleteLoanUseCase := apploan.NewDeleteLoanUseCase(loanRepo)
	loanQueryUseCase := apploan.NewLoanQueryUseCase(loanRepo, reservationRepo, clk, policy)

	createReservationUseCase := appreservation.NewCreateReservationUseCase(
		reservationRepo, loanRepo, bookRepo, userRepo, txManager, clk, cfg.Reservation.ExpireAfter)
	cancelReservationUseCase := appreservation.NewCancelReservationUseCase(reservationRepo, bookRepo, txManager)
	confirmReservationUseCase := appreservation.NewConfirmReservationUseCase(
		reservationRepo, bookRepo, userRepo, txManager, notifier, clk)
	reservationQueryUseCase := appreservation.NewReservationQueryUseCase(reservationRepo)
	expireUseCase := appreservation.NewExpireReservationsUseCase(reservationRepo, bookRepo, txManager, clk)
	notifyUseCase := appreservation.NewNotifyAvailableReservationsUseCase(
		reservationRepo, bookRepo, userRepo, notifier, clk)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase, profileUseCase)
	bookHandler := handler.NewBookHandler(registerBookUseCase, listBooksUseCase, manageBookUseCase)
	loanHandler := handler.NewLoanHandler(
		createLoanUseCase, returnLoanUseCase, renewLoanUseCase,
		updateStatusUseCase, deleteLoanUseCase, loanQueryUseCase)
	reservationHandler := handler.NewReservationHandler(
		createReservationUseCase, cancelReservationUseCase, confirmReservationUseCase, reservationQueryUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, bookHandler, loanHandler, reservationHandler, authMiddleware)

	// 7. 启动后台清扫任务
	sweeper := scheduler.NewSweeper(expireUseCase, notifyUseCase, cfg.Sweep.ExpiryInterval, cfg.Sweep.NotifyInterval)
	sweeper.Start()

	// 8. 启动HTTP服务(优雅停机)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", srv.Addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", srv.Addr)
		fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", srv.Addr)
		fmt.Printf("   监控指标: http://localhost%s/metrics\n", srv.Addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("收到停机信号,开始优雅停机...")

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP服务停机失败: %v", err)
	}
	log.Println("服务已退出")
}
