package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/harryli1024/hotel-purchase/internal/ai"
	"github.com/harryli1024/hotel-purchase/internal/application"
	"github.com/harryli1024/hotel-purchase/internal/auth"
	"github.com/harryli1024/hotel-purchase/internal/dailycount"
	"github.com/harryli1024/hotel-purchase/internal/item"
	"github.com/harryli1024/hotel-purchase/internal/middleware"
)

// Deps carries the wired handlers into route registration.
type Deps struct {
	Auth         *auth.Handler
	Items        *item.Handler
	Applications *application.Handler
	DailyCounts  *dailycount.Handler
	AI           *ai.Handler
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// ───────────────────────── AUTH ─────────────────────────
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", deps.Auth.Login)

		protected := authGroup.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/me", deps.Auth.Me)
			protected.POST("/change-password", deps.Auth.ChangePassword)
			protected.POST("/register",
				middleware.RequireRole(auth.RoleBoss, auth.RoleAdmin), deps.Auth.CreateUser)
		}
	}

	// ───────────────────────── USERS ─────────────────────────
	users := api.Group("/users")
	users.Use(middleware.AuthMiddleware())
	{
		users.GET("/purchasers", deps.Auth.ListPurchasers)

		manage := users.Group("")
		manage.Use(middleware.RequireRole(auth.RoleBoss, auth.RoleAdmin))
		{
			manage.GET("", deps.Auth.ListUsers)
			manage.POST("", deps.Auth.CreateUser)
			manage.PUT("/:id", deps.Auth.UpdateUser)
		}
		users.DELETE("/:id",
			middleware.RequireRole(auth.RoleAdmin), deps.Auth.DeleteUser)
	}

	// ───────────────────────── APPLICATIONS ─────────────────────────
	apps := api.Group("/applications")
	apps.Use(middleware.AuthMiddleware())
	{
		apps.POST("",
			middleware.RequireRole(auth.RolePurchaser, auth.RoleAdmin), deps.Applications.Submit)
		apps.GET("", deps.Applications.List)
		apps.GET("/stats/summary", deps.Applications.Stats)
		apps.GET("/export/excel",
			middleware.RequireRole(auth.RoleBoss, auth.RoleFinance, auth.RoleAdmin),
			deps.Applications.ExportExcel)
		apps.GET("/:id", deps.Applications.Get)
		apps.PUT("/:id/review",
			middleware.RequireRole(auth.RoleBoss, auth.RoleAdmin), deps.Applications.Review)
		apps.PUT("/:id/account",
			middleware.RequireRole(auth.RoleFinance, auth.RoleAdmin), deps.Applications.MarkAccounted)
		apps.DELETE("/:id",
			middleware.RequireRole(auth.RoleBoss, auth.RoleAdmin), deps.Applications.Delete)
	}

	// ───────────────────────── DAILY COUNTS ─────────────────────────
	counts := api.Group("/daily-counts")
	counts.Use(middleware.AuthMiddleware())
	{
		counts.GET("", deps.DailyCounts.List)
		counts.GET("/:date", deps.DailyCounts.Get)

		write := counts.Group("")
		write.Use(middleware.RequireRole(auth.RoleFinance, auth.RoleBoss, auth.RoleAdmin))
		{
			write.POST("", deps.DailyCounts.Save)
			write.POST("/batch", deps.DailyCounts.SaveBatch)
			write.DELETE("/:date", deps.DailyCounts.Delete)
		}
	}

	// ───────────────────────── ITEM CATALOG ─────────────────────────
	// The catalog is a shared convenience list; any signed-in user may edit it.
	items := api.Group("/items")
	items.Use(middleware.AuthMiddleware())
	{
		items.GET("/categories", deps.Items.ListCategories)
		items.POST("/categories", deps.Items.CreateCategory)
		items.PUT("/categories/:id", deps.Items.UpdateCategory)
		items.DELETE("/categories/:id", deps.Items.DeleteCategory)
		items.GET("", deps.Items.ListItems)
		items.POST("", deps.Items.CreateItem)
		items.PUT("/:id", deps.Items.UpdateItem)
		items.DELETE("/:id", deps.Items.DeleteItem)
	}

	// ───────────────────────── LEARNED DATA ─────────────────────────
	// Aggregates are readable by anyone signed in; editing, exporting, and
	// importing them is boss/admin only.
	aiGroup := api.Group("/ai")
	aiGroup.Use(middleware.AuthMiddleware())
	{
		aiGroup.GET("/prices", deps.AI.ListPrices)
		aiGroup.GET("/consumption", deps.AI.ListConsumption)

		manage := aiGroup.Group("")
		manage.Use(middleware.RequireRole(auth.RoleBoss, auth.RoleAdmin))
		{
			manage.POST("/prices", deps.AI.AddPrice)
			manage.PUT("/prices/:itemName", deps.AI.UpdatePrice)
			manage.DELETE("/prices/:itemName", deps.AI.DeletePrice)

			manage.POST("/consumption", deps.AI.AddConsumption)
			manage.PUT("/consumption/:itemName", deps.AI.UpdateConsumption)
			manage.DELETE("/consumption/:itemName", deps.AI.DeleteConsumption)

			manage.GET("/export", deps.AI.Export)
			manage.POST("/import", deps.AI.Import)
		}
	}

	return r
}
