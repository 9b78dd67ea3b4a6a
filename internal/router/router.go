package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stemsi/institute-console/internal/config"
	"github.com/stemsi/institute-console/internal/handler"
	"github.com/stemsi/institute-console/internal/logger"
	"github.com/stemsi/institute-console/internal/middleware"
	"github.com/stemsi/institute-console/internal/response"
	"github.com/stemsi/institute-console/internal/service"
	"github.com/stemsi/institute-console/internal/session"
	"github.com/stemsi/institute-console/internal/web"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Dashboard  *handler.DashboardHandler
	Student    *handler.StudentHandler
	Payment    *handler.PaymentHandler
	Attendance *handler.AttendanceHandler
	Notice     *handler.NoticeHandler
	Staff      *handler.StaffHandler
	Result     *handler.ResultHandler
	Portal     *handler.PortalHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// Deps is what the guards and shared middleware need.
type Deps struct {
	Provider *session.Provider
	Auth     *service.AuthService
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// Media resolves backend file references in templates.
	Media func(ref string) string
	Log   zerolog.Logger
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds the background work of the rate limiter.
func SetupRouter(ctx context.Context, deps Deps, handlers *Handlers, cfg *config.Config) (*gin.Engine, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	tmpl, err := web.Parse(deps.Media)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(logger.RequestLogger(deps.Log, response.ContextKeyRequestID))

	// Apply brotli middleware globally. promhttp negotiates its own encoding.
	brotliConfig := middleware.DefaultBrotliConfig
	brotliConfig.Skipper = func(c *gin.Context) bool { return c.Request.URL.Path == "/metrics" }
	router.Use(middleware.BrotliWithConfig(brotliConfig))

	router.NoRoute(handler.NotFound)

	// ─── 0. Operational ────────────────────────────────────────────────
	router.GET("/health", handlers.System.Health)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// ─── 1. Public pages ───────────────────────────────────────────────
	pages := router.Group("/")
	pages.Use(middleware.NoStore())
	{
		pages.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, middleware.TeacherLoginPath) })
		pages.GET("/login", handlers.Auth.AdminLoginPage)
		pages.POST("/login", handlers.Auth.AdminLogin)
		pages.GET("/login/teacher", handlers.Auth.TeacherLoginPage)
		pages.POST("/login/teacher", handlers.Auth.TeacherLogin)
		pages.POST("/logout", handlers.Auth.Logout)
		pages.GET("/results", handlers.Result.ListResults)
	}

	// ─── 2. Student portal (own session, rate-limited login) ───────────
	portalLimiter := middleware.NewRateLimiter(ctx, cfg.PortalLoginRate, time.Minute)
	portal := router.Group("/portal")
	portal.Use(middleware.NoStore())
	{
		portal.GET("", handlers.Portal.Home)
		portal.POST("", portalLimiter.Middleware(handlers.Portal.RateLimited), handlers.Portal.Login)
		portal.POST("/password", handlers.Portal.ChangePassword)
		portal.POST("/logout", handlers.Portal.Logout)
	}

	// ─── 3. Teacher pages ──────────────────────────────────────────────
	teacher := router.Group("/")
	teacher.Use(middleware.NoStore(), middleware.RequireTeacher(deps.Provider))
	{
		teacher.GET("/dashboard", handlers.Dashboard.Dashboard)

		teacher.GET("/students", handlers.Student.ListStudents)
		teacher.POST("/students", handlers.Student.CreateStudent)
		teacher.GET("/students/:id/edit", handlers.Student.EditStudentPage)
		teacher.POST("/students/:id/edit", handlers.Student.UpdateStudent)
		teacher.GET("/students/:id/delete", handlers.Student.ConfirmDeleteStudent)
		teacher.POST("/students/:id/delete", handlers.Student.DeleteStudent)

		teacher.GET("/payments", handlers.Payment.Overview)
		teacher.POST("/payments", handlers.Payment.AddPayment)
		teacher.GET("/payments/manage", handlers.Payment.ManagePayments)
		teacher.GET("/payments/:id/edit", handlers.Payment.EditPaymentPage)
		teacher.POST("/payments/:id/edit", handlers.Payment.UpdatePayment)
		teacher.GET("/payments/:id/delete", handlers.Payment.ConfirmDeletePayment)
		teacher.POST("/payments/:id/delete", handlers.Payment.DeletePayment)

		teacher.GET("/attendance", handlers.Attendance.Roster)
		teacher.POST("/attendance", handlers.Attendance.SubmitAttendance)

		teacher.GET("/notices", handlers.Notice.ListNotices)
		teacher.POST("/notices", handlers.Notice.CreateNotice)
		teacher.GET("/notices/:id/edit", handlers.Notice.EditNoticePage)
		teacher.POST("/notices/:id/edit", handlers.Notice.UpdateNotice)
		teacher.GET("/notices/:id/delete", handlers.Notice.ConfirmDeleteNotice)
		teacher.POST("/notices/:id/delete", handlers.Notice.DeleteNotice)
	}

	// ─── 4. Admin pages (backend JWT) ──────────────────────────────────
	admin := router.Group("/staff")
	admin.Use(middleware.NoStore(), middleware.RequireAdmin(deps.Provider, deps.Auth, deps.Log))
	{
		admin.GET("", handlers.Staff.ListTeachers)
		admin.POST("", handlers.Staff.CreateTeacher)
		admin.GET("/:id/edit", handlers.Staff.EditTeacherPage)
		admin.POST("/:id/edit", handlers.Staff.UpdateTeacher)
		admin.GET("/:id/delete", handlers.Staff.ConfirmDeleteTeacher)
		admin.POST("/:id/delete", handlers.Staff.DeleteTeacher)
	}

	// ─── 5. WebSocket ──────────────────────────────────────────────────
	router.GET("/ws/invalidations", middleware.RequireAnySession(deps.Provider), handlers.WS.Invalidations)

	return router, nil
}
