package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mohamedhany/eshop-api/internal/auth"
	"github.com/mohamedhany/eshop-api/internal/config"
	"github.com/mohamedhany/eshop-api/internal/domain/user"
	"github.com/mohamedhany/eshop-api/internal/http/handlers"
	"github.com/mohamedhany/eshop-api/internal/http/middlewares"
	"github.com/mohamedhany/eshop-api/internal/http/validators"
	"github.com/mohamedhany/eshop-api/internal/notifications"
	"github.com/mohamedhany/eshop-api/internal/observability"
	"github.com/mohamedhany/eshop-api/internal/query"
	"github.com/mohamedhany/eshop-api/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Deps is everything the router needs wired in; main builds it once.
type Deps struct {
	Cfg     config.Config
	Log     *slog.Logger
	Pool    *pgxpool.Pool
	Tokens  *auth.Manager
	Mailer  notifications.Mailer
	Metrics *observability.Prom
	// Limiter is nil when redis is not configured.
	Limiter *middlewares.RateLimiter
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.ErrorResponder(d.Cfg.Env, d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("eshop-api"))

	if d.Metrics != nil {
		r.Use(d.Metrics.GinHandleMiddleware())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	health := handlers.NewHealthHandler(d.Pool)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	// wire up repositories
	var observe postgres.DBObserver

	if d.Metrics != nil {
		observe = d.Metrics.ObserveDB
	}

	collection := func(desc query.Descriptor, opts ...postgres.CollectionOption) *postgres.Collection {
		opts = append(opts, postgres.WithObserver(observe))
		return postgres.NewCollection(d.Pool, desc, opts...)
	}

	categories := handlers.NewResource(collection(postgres.CategoriesDescriptor()))
	subCategories := handlers.NewResource(collection(postgres.SubCategoriesDescriptor()))
	brands := handlers.NewResource(collection(postgres.BrandsDescriptor()))
	products := handlers.NewResource(collection(postgres.ProductsDescriptor()))
	userAccounts := handlers.NewResource(collection(postgres.UsersDescriptor(), postgres.WithBeforeWrite(postgres.UserWriteHook)))

	usersRepo := postgres.NewUsersRepo(d.Pool)

	authHandler := handlers.NewAuthHandler(usersRepo, d.Tokens, d.Mailer, d.Log)
	accountHandler := handlers.NewAccountHandler(usersRepo, d.Tokens)

	guard := middlewares.NewAuthMiddleware(d.Tokens, usersRepo)
	protect := guard.Protect()
	staff := guard.AllowedTo(user.RoleAdmin, user.RoleManager)
	adminOnly := guard.AllowedTo(user.RoleAdmin)

	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth")

	if d.Limiter != nil {
		authRoutes.Use(d.Limiter.Middleware(middlewares.KeyByIP))
	}

	authRoutes.POST("/signup", validators.SignUp(), authHandler.SignUp)
	authRoutes.POST("/login", validators.Login(), authHandler.Login)
	authRoutes.POST("/forgotPassword", validators.ForgotPassword(), authHandler.ForgotPassword)
	authRoutes.POST("/verifyResetCode", validators.VerifyResetCode(), authHandler.VerifyResetCode)
	authRoutes.PUT("/resetPassword", validators.ResetPassword(), authHandler.ResetPassword)

	cat := api.Group("/categories")
	cat.GET("", categories.GetAll)
	cat.POST("", protect, staff, validators.CreateCategory(), categories.CreateOne)
	cat.GET("/:id", validators.GetCategory(), categories.GetOne)
	cat.PUT("/:id", protect, staff, validators.UpdateCategory(), categories.UpdateOne)
	cat.DELETE("/:id", protect, adminOnly, validators.DeleteCategory(), categories.DeleteOne)

	// nested: subcategories of one category; the create validator
	// backfills the parent id from the path
	cat.GET("/:id/subcategories", subCategories.ScopedList("category", "id"))
	cat.POST("/:id/subcategories", protect, staff, validators.CreateSubCategory(), subCategories.CreateOne)

	sub := api.Group("/subcategories")
	sub.GET("", subCategories.GetAll)
	sub.POST("", protect, staff, validators.CreateSubCategory(), subCategories.CreateOne)
	sub.GET("/:id", validators.GetSubCategory(), subCategories.GetOne)
	sub.PUT("/:id", protect, staff, validators.UpdateSubCategory(), subCategories.UpdateOne)
	sub.DELETE("/:id", protect, adminOnly, validators.DeleteSubCategory(), subCategories.DeleteOne)

	brand := api.Group("/brands")
	brand.GET("", brands.GetAll)
	brand.POST("", protect, staff, validators.CreateBrand(), brands.CreateOne)
	brand.GET("/:id", validators.GetBrand(), brands.GetOne)
	brand.PUT("/:id", protect, staff, validators.UpdateBrand(), brands.UpdateOne)
	brand.DELETE("/:id", protect, adminOnly, validators.DeleteBrand(), brands.DeleteOne)

	product := api.Group("/products")
	product.GET("", products.GetAll)
	product.POST("", protect, staff, validators.CreateProduct(), products.CreateOne)
	product.GET("/:id", validators.GetProduct(), products.GetOne)
	product.PUT("/:id", protect, staff, validators.UpdateProduct(), products.UpdateOne)
	product.DELETE("/:id", protect, adminOnly, validators.DeleteProduct(), products.DeleteOne)

	users := api.Group("/users")
	users.Use(protect)

	users.GET("/getMe", accountHandler.GetMe)
	users.PUT("/changeMyPassword", validators.ChangeMyPassword(), accountHandler.ChangeMyPassword)
	users.PUT("/updateMe", validators.UpdateMe(), accountHandler.UpdateMe)
	users.DELETE("/deleteMe", accountHandler.DeleteMe)

	admin := users.Group("")
	admin.Use(staff)

	admin.PUT("/changePassword/:id", validators.ChangeUserPassword(), accountHandler.ChangeUserPassword)
	admin.GET("", userAccounts.GetAll)
	admin.POST("", validators.CreateUser(), userAccounts.CreateOne)
	admin.GET("/:id", validators.GetUser(), userAccounts.GetOne)
	admin.PUT("/:id", validators.UpdateUser(), userAccounts.UpdateOne)
	admin.DELETE("/:id", validators.DeleteUser(), userAccounts.DeleteOne)

	r.NoRoute(func(ctx *gin.Context) {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"status":  "fail",
			"message": fmt.Sprintf("Can't find this route: %s", ctx.Request.URL.Path),
		})
	})

	return r
}
