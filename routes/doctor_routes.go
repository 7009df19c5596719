package routes

import (
	"prescripto_back_end_go/middleware"
	"prescripto_back_end_go/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
)

func SetupDoctorRoutes(r *gin.Engine, pool *pgxpool.Pool, rl *middleware.RateLimiter) {
	r.POST("/api/doctor/login", middleware.RateLimit(rl), func(c *gin.Context) {
		services.LoginDoctor(c, pool)
	})

	r.GET("/api/doctor/list", func(c *gin.Context) {
		services.DoctorList(c, pool)
	})

	r.GET("/api/doctor/appointments", middleware.AuthDoctor(), func(c *gin.Context) {
		services.DoctorAppointments(c, pool)
	})

	r.POST("/api/doctor/complete-appointment", middleware.AuthDoctor(), func(c *gin.Context) {
		services.CompleteAppointment(c, pool)
	})

	r.POST("/api/doctor/cancel-appointment", middleware.AuthDoctor(), func(c *gin.Context) {
		services.CancelAppointmentDoctor(c, pool)
	})

	r.GET("/api/doctor/dashboard", middleware.AuthDoctor(), func(c *gin.Context) {
		services.DoctorDashboardData(c, pool)
	})

	r.GET("/api/doctor/profile", middleware.AuthDoctor(), func(c *gin.Context) {
		services.DoctorProfile(c, pool)
	})

	r.POST("/api/doctor/update-profile", middleware.AuthDoctor(), func(c *gin.Context) {
		services.UpdateDoctorProfile(c, pool)
	})
}
