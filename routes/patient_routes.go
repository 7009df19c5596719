package routes

import (
	"prescripto_back_end_go/middleware"
	"prescripto_back_end_go/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
)

func SetupPatientRoutes(r *gin.Engine, pool *pgxpool.Pool, rl *middleware.RateLimiter) {
	r.POST("/api/user/register", middleware.RateLimit(rl), func(c *gin.Context) {
		services.RegisterUser(c, pool)
	})

	r.POST("/api/user/login", middleware.RateLimit(rl), func(c *gin.Context) {
		services.LoginUser(c, pool)
	})

	r.GET("/api/user/get-profile", middleware.AuthUser(), func(c *gin.Context) {
		services.GetProfile(c, pool)
	})

	r.POST("/api/user/update-profile", middleware.AuthUser(), func(c *gin.Context) {
		services.UpdateProfile(c, pool)
	})

	r.GET("/api/user/slots/:docId", func(c *gin.Context) {
		services.GetDoctorSlots(c, pool)
	})

	r.POST("/api/user/book-appointment", middleware.AuthUser(), func(c *gin.Context) {
		services.BookAppointment(c, pool)
	})

	r.GET("/api/user/appointments", middleware.AuthUser(), func(c *gin.Context) {
		services.ListUserAppointments(c, pool)
	})

	r.POST("/api/user/cancel-appointment", middleware.AuthUser(), func(c *gin.Context) {
		services.CancelAppointmentUser(c, pool)
	})

	r.POST("/api/user/payment-razorpay", middleware.AuthUser(), func(c *gin.Context) {
		services.PaymentRazorpay(c, pool)
	})

	r.POST("/api/user/verifyRazorpay", middleware.AuthUser(), func(c *gin.Context) {
		services.VerifyRazorpay(c, pool)
	})

	r.GET("/api/user/receipt/:appointmentId", middleware.AuthUser(), func(c *gin.Context) {
		services.AppointmentReceipt(c, pool)
	})
}
