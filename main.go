package main

import (
	"log"
	"os"
	"time"

	"prescripto_back_end_go/cronjobs"
	"prescripto_back_end_go/db"
	"prescripto_back_end_go/middleware"
	"prescripto_back_end_go/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	r := gin.Default()

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:5174"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "token", "dToken", "aToken"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))

	// Initialize database
	conn, err := db.InitDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer conn.Close()

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	rl := middleware.NewRateLimiter(5, 10)
	routes.SetupPatientRoutes(r, conn, rl)
	routes.SetupDoctorRoutes(r, conn, rl)
	routes.SetupAdminRoutes(r, conn, rl)

	reminderService := cronjobs.NewAppointmentReminder(conn)
	scheduler := reminderService.StartReminderCron()
	defer scheduler.Stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start the server: %v", err)
	}
}
