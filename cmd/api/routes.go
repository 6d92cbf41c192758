package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/xiebiao/library/internal/interface/http/handler"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// registerRoutes 注册路由
// 权限分层:
// 1. 公开: 注册/登录/健康检查/图书检索
// 2. 登录读者: 个人资料、本人借阅与预约的查询和操作
// 3. 馆员(LIBRARIAN/ADMIN): 图书管理、借阅登记、状态覆盖、预约确认、用户管理
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	loanHandler *handler.LoanHandler,
	reservationHandler *handler.ReservationHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 用户模块
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
		}

		authedUsers := v1.Group("/users")
		authedUsers.Use(authMiddleware.RequireAuth())
		{
			authedUsers.POST("/logout", userHandler.Logout)
			authedUsers.GET("/profile", userHandler.GetProfile)
			authedUsers.PUT("/profile", userHandler.UpdateProfile)
			authedUsers.GET("", authMiddleware.RequireStaff(), userHandler.ListUsers)
			authedUsers.PUT("/:id/active", authMiddleware.RequireStaff(), userHandler.SetActive)
		}

		// 图书模块: 检索公开,管理需要馆员
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)
		}

		staffBooks := v1.Group("/books")
		staffBooks.Use(authMiddleware.RequireAuth(), authMiddleware.RequireStaff())
		{
			staffBooks.POST("", bookHandler.RegisterBook)
			staffBooks.PUT("/:id", bookHandler.UpdateBook)
			staffBooks.PUT("/:id/copies", bookHandler.AdjustCopies)
			staffBooks.DELETE("/:id", bookHandler.DeleteBook)
		}

		// 借阅模块
		loans := v1.Group("/loans")
		loans.Use(authMiddleware.RequireAuth())
		{
			loans.GET("", loanHandler.ListLoans)
			loans.GET("/:id", loanHandler.GetLoan)
			loans.GET("/:id/can-renew", loanHandler.CanRenew)
			loans.POST("/:id/return", loanHandler.ReturnLoan)
			loans.POST("/:id/renew", loanHandler.RenewLoan)

			loans.POST("", authMiddleware.RequireStaff(), loanHandler.CreateLoan)
			loans.PUT("/:id/status", authMiddleware.RequireStaff(), loanHandler.UpdateLoanStatus)
			loans.DELETE("/:id", authMiddleware.RequireStaff(), loanHandler.DeleteLoan)
		}

		// 预约模块
		reservations := v1.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			reservations.POST("", reservationHandler.CreateReservation)
			reservations.GET("", reservationHandler.ListReservations)
			reservations.GET("/:id", reservationHandler.GetReservation)
			reservations.GET("/:id/position", reservationHandler.GetQueuePosition)
			reservations.POST("/:id/cancel", reservationHandler.CancelReservation)

			reservations.POST("/:id/confirm", authMiddleware.RequireStaff(), reservationHandler.ConfirmReservation)
		}
	}
}
