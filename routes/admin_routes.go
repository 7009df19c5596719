package routes

import (
	"prescripto_back_end_go/middleware"
	"prescripto_back_end_go/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
)

func SetupAdminRoutes(r *gin.Engine, pool *pgxpool.Pool, rl *middleware.RateLimiter) {
	r.POST("/api/admin/login", middleware.RateLimit(rl), func(c *gin.Context) {
		services.LoginAdmin(c)
	})

	r.POST("/api/admin/add-doctor", middleware.AuthAdmin(), func(c *gin.Context) {
		services.AddDoctor(c, pool)
	})

	r.POST("/api/admin/all-doctors", middleware.AuthAdmin(), func(c *gin.Context) {
		services.AllDoctors(c, pool)
	})

	r.POST("/api/admin/change-availability", middleware.AuthAdmin(), func(c *gin.Context) {
		services.ChangeAvailability(c, pool)
	})

	r.GET("/api/admin/appointments", middleware.AuthAdmin(), func(c *gin.Context) {
		services.AppointmentsAdmin(c, pool)
	})

	r.POST("/api/admin/cancel-appointment", middleware.AuthAdmin(), func(c *gin.Context) {
		services.CancelAppointmentAdmin(c, pool)
	})

	r.GET("/api/admin/dashboard", middleware.AuthAdmin(), func(c *gin.Context) {
		services.AdminDashboardData(c, pool)
	})

	r.POST("/api/admin/change-doctor-password", middleware.AuthAdmin(), func(c *gin.Context) {
		services.ChangeDoctorPassword(c, pool)
	})
}
