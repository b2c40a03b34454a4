package router

import (
	"time"

	"github.com/edupulse/class-service/internal/config"
	"github.com/edupulse/class-service/internal/handler"
	"github.com/edupulse/class-service/internal/middleware"
	"github.com/edupulse/class-service/internal/model"
	"github.com/edupulse/class-service/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Class      *handler.ClassHandler
	Lecture    *handler.LectureHandler
	Attendance *handler.AttendanceHandler
	Monitor    *handler.MonitorHandler
	WS         *handler.WSHandler
	Health     *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	users middleware.UsernameResolver,
	markLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.HeaderUserID, middleware.HeaderUserRole}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(requestLogger(log))

	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		SkipSuffixes: []string{"/attendance/stream"},
	}))

	router.GET("/health", handlers.Health.Health)

	principal := middleware.RequirePrincipal(users, log)
	lecturerOnly := middleware.RequireRole(model.RoleLecturer)
	staff := middleware.RequireRole(model.RoleLecturer, model.RoleAdmin)

	// ─── Classes API (principal required) ──────────────────────────────
	api := router.Group("/api/v1/classes")
	api.Use(principal, middleware.NoStore())
	{
		api.POST("", lecturerOnly, handlers.Class.CreateClass)
		api.GET("", staff, handlers.Class.ListClasses)
		api.GET("/:id", handlers.Class.GetClass)
		api.PUT("/:id", lecturerOnly, handlers.Class.UpdateClass)
		api.DELETE("/:id", staff, handlers.Class.DeleteClass)
		api.POST("/:id/restore", staff, handlers.Class.RestoreClass)

		api.POST("/:id/lectures", lecturerOnly, handlers.Lecture.ScheduleLecture)
		api.GET("/:id/lectures", handlers.Lecture.ListLectures)

		api.GET("/grade/:gradeId", handlers.Class.ListClassesByGrade)
		api.GET("/lecturer/:lecturerId", staff, handlers.Class.ListClassesByLecturer)

		api.GET("/students/:studentId/attendance", handlers.Attendance.ListStudentAttendance)
	}

	lectures := api.Group("/lectures")
	{
		lectures.GET("/count", handlers.Lecture.CountLectures)
		lectures.GET("/:id", handlers.Lecture.GetLecture)
		lectures.PUT("/:id", lecturerOnly, handlers.Lecture.UpdateLecture)
		lectures.DELETE("/:id", lecturerOnly, handlers.Lecture.DeleteLecture)

		lectures.POST("/:id/attendance",
			middleware.RequireRole(model.RoleLecturer, model.RoleStudent),
			markLimiter.PerPrincipal(),
			handlers.Attendance.MarkAttendance,
		)
		lectures.GET("/:id/attendance", staff, handlers.Attendance.ListLectureAttendance)
		lectures.GET("/:id/attendance/me", middleware.RequireRole(model.RoleStudent), handlers.Attendance.GetMyAttendance)
		lectures.GET("/:id/attendance/stream", staff, handlers.Monitor.StreamAttendance)
	}

	// ─── WebSocket Group ───────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(principal, staff)
	{
		ws.GET("/lectures/:id/attendance", handlers.WS.AttendanceStream)
	}

	return router
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= 500 {
			evt = log.Error()
		}
		evt.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", response.RequestID(c)).
			Msg("Request handled")
	}
}
