package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"prescripto_back_end_go/auth"
	"prescripto_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// The admin panel has a single operator account configured through the
// environment, there is no admins table.
func LoginAdmin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	if req.Email != os.Getenv("ADMIN_EMAIL") || req.Password != os.Getenv("ADMIN_PASSWORD") {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid Credentials"})
		return
	}

	token, err := auth.GenerateToken("admin", auth.RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func AddDoctor(c *gin.Context, pool *pgxpool.Pool) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	experience := c.PostForm("experience")
	about := c.PostForm("about")
	speciality := c.PostForm("speciality")
	degree := c.PostForm("degree")

	if name == "" || email == "" || password == "" || experience == "" ||
		about == "" || speciality == "" || degree == "" || c.PostForm("fees") == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}
	fees, err := strconv.Atoi(c.PostForm("fees"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid fees"})
		return
	}

	var address models.Address
	if raw := c.PostForm("address"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &address); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid address"})
			return
		}
	}

	if len(password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please enter a strong password"})
		return
	}

	var existing string
	err = pool.QueryRow(context.Background(), "SELECT email FROM doctors WHERE email = $1", email).Scan(&existing)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Email already exists"})
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	imagePath := ""
	if file, err := c.FormFile("doc_img"); err == nil {
		imagePath = filepath.Join("uploads", uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, imagePath); err != nil {
			log.Println("Upload error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not save image"})
			return
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	_, err = pool.Exec(context.Background(),
		`INSERT INTO doctors (name, email, hashed_password, image, speciality, degree,
		                      experience, about, fees, address_line1, address_line2)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		name, email, string(hashedPassword), imagePath, speciality, degree,
		experience, about, fees, address.Line1, address.Line2)
	if err != nil {
		log.Println("Insert error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Doctor Added"})
}

func AllDoctors(c *gin.Context, pool *pgxpool.Pool) {
	DoctorList(c, pool)
}

// ChangeAvailability toggles the doctor's available flag.
func ChangeAvailability(c *gin.Context, pool *pgxpool.Pool) {
	var req models.ChangeAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	tag, err := pool.Exec(context.Background(),
		"UPDATE doctors SET available = NOT available WHERE doctor_id = $1", req.DocID)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Doctor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Availability changed"})
}

func AppointmentsAdmin(c *gin.Context, pool *pgxpool.Pool) {
	appointments, err := queryAppointments(context.Background(), pool, "")
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": appointments})
}

func CancelAppointmentAdmin(c *gin.Context, pool *pgxpool.Pool) {
	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	tag, err := pool.Exec(context.Background(),
		"UPDATE appointments SET cancelled = TRUE, is_completed = FALSE WHERE appointment_id = $1",
		req.AppointmentID)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Cancellation Failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment cancelled successfully"})
}

func AdminDashboardData(c *gin.Context, pool *pgxpool.Pool) {
	appointments, err := queryAppointments(context.Background(), pool, "")
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	var doctors, users int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM doctors").Scan(&doctors); err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM users").Scan(&users); err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	dash := models.AdminDashboard{
		Doctors:            doctors,
		Appointments:       len(appointments),
		Patients:           users,
		LatestAppointments: LatestAppointments(appointments, 5),
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dashData": dash})
}

func ChangeDoctorPassword(c *gin.Context, pool *pgxpool.Pool) {
	var req models.ChangeDoctorPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	tag, err := pool.Exec(context.Background(),
		"UPDATE doctors SET hashed_password = $1 WHERE doctor_id = $2",
		string(hashedPassword), req.DocID)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Doctor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password Updated"})
}
