package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"prescripto_back_end_go/auth"
	"prescripto_back_end_go/models"
	"prescripto_back_end_go/scheduling"
	"prescripto_back_end_go/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func RegisterUser(c *gin.Context, pool *pgxpool.Pool) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}
	if !validators.ValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please enter a valid email"})
		return
	}

	var existing string
	err := pool.QueryRow(context.Background(), "SELECT email FROM users WHERE email = $1", req.Email).Scan(&existing)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Email already exists"})
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	var userId string
	err = pool.QueryRow(context.Background(),
		"INSERT INTO users (name, email, hashed_password) VALUES ($1, $2, $3) RETURNING user_id",
		req.Name, req.Email, string(hashedPassword)).Scan(&userId)
	if err != nil {
		log.Println("Insert error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	token, err := auth.GenerateToken(userId, auth.RolePatient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func LoginUser(c *gin.Context, pool *pgxpool.Pool) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	var userId, hashed string
	err := pool.QueryRow(context.Background(),
		"SELECT user_id, hashed_password FROM users WHERE email = $1", req.Email).Scan(&userId, &hashed)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid Credentials"})
		return
	}
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(req.Password)) != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Invalid Credentials"})
		return
	}

	token, err := auth.GenerateToken(userId, auth.RolePatient)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func getUser(ctx context.Context, pool *pgxpool.Pool, userId string) (models.User, error) {
	var u models.User
	err := pool.QueryRow(ctx,
		`SELECT user_id, name, email, image, phone, gender, dob, address_line1, address_line2
		 FROM users WHERE user_id = $1`, userId).Scan(
		&u.UserID, &u.Name, &u.Email, &u.Image, &u.Phone, &u.Gender, &u.Dob,
		&u.Address.Line1, &u.Address.Line2,
	)
	return u, err
}

func GetProfile(c *gin.Context, pool *pgxpool.Pool) {
	userId := c.GetString("userId")

	user, err := getUser(context.Background(), pool, userId)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userData": user})
}

func UpdateProfile(c *gin.Context, pool *pgxpool.Pool) {
	userId := c.GetString("userId")

	name := c.PostForm("name")
	phone := c.PostForm("phone")
	gender := c.PostForm("gender")
	dob := c.PostForm("dob")
	if name == "" || phone == "" || gender == "" || dob == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Data Missing"})
		return
	}

	var address models.Address
	if raw := c.PostForm("address"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &address); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid address"})
			return
		}
	}

	_, err := pool.Exec(context.Background(),
		`UPDATE users SET name = $1, phone = $2, gender = $3, dob = $4,
		 address_line1 = $5, address_line2 = $6 WHERE user_id = $7`,
		name, phone, gender, dob, address.Line1, address.Line2, userId)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	if file, err := c.FormFile("image"); err == nil {
		imagePath := filepath.Join("uploads", uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, imagePath); err != nil {
			log.Println("Upload error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not save image"})
			return
		}
		if _, err := pool.Exec(context.Background(),
			"UPDATE users SET image = $1 WHERE user_id = $2", imagePath, userId); err != nil {
			log.Println("Update error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile Updated"})
}

// GetDoctorSlots serves the 7-day slot window for one doctor, generated
// against the doctor's reserved slots at the time of the call. The same
// generator validates bookings, so the client is always offered exactly
// the slots the server will accept.
func GetDoctorSlots(c *gin.Context, pool *pgxpool.Pool) {
	doctorId := c.Param("docId")

	var available bool
	err := pool.QueryRow(context.Background(),
		"SELECT available FROM doctors WHERE doctor_id = $1", doctorId).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Doctor not found"})
		return
	}
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if !available {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Doctor Not Available"})
		return
	}

	booked, err := slotsBookedFor(context.Background(), pool, doctorId)
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "slots": scheduling.GenerateSlots(booked, time.Now())})
}

func BookAppointment(c *gin.Context, pool *pgxpool.Pool) {
	userId := c.GetString("userId")

	var req models.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	user, err := getUser(context.Background(), pool, userId)
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if !validators.ProfileComplete(user) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Please complete your profile before booking an appointment"})
		return
	}

	var available bool
	var fees int
	err = pool.QueryRow(context.Background(),
		"SELECT available, fees FROM doctors WHERE doctor_id = $1", req.DocID).Scan(&available, &fees)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Doctor not found"})
		return
	}
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if !available {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Doctor Not Available"})
		return
	}

	if !scheduling.Bookable(req.SlotDate, req.SlotTime, time.Now()) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Slot Not Available"})
		return
	}

	// Reserving the slot and creating the appointment happen in one
	// transaction. The slot insert carries the conflict check: when a
	// concurrent booking got there first, zero rows are written and the
	// whole transaction rolls back.
	tx, err := pool.Begin(context.Background())
	if err != nil {
		log.Println("Transaction error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer tx.Rollback(context.Background())

	tag, err := tx.Exec(context.Background(),
		"INSERT INTO booked_slots (doctor_id, slot_date, slot_time) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING",
		req.DocID, req.SlotDate, req.SlotTime)
	if err != nil {
		log.Println("Insert error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Slot Not Available"})
		return
	}

	_, err = tx.Exec(context.Background(),
		`INSERT INTO appointments (doctor_id, user_id, slot_date, slot_time, amount)
		 VALUES ($1, $2, $3, $4, $5)`,
		req.DocID, userId, req.SlotDate, req.SlotTime, fees)
	if err != nil {
		log.Println("Insert error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	if err := tx.Commit(context.Background()); err != nil {
		log.Println("Commit error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment Booked"})
}

func ListUserAppointments(c *gin.Context, pool *pgxpool.Pool) {
	userId := c.GetString("userId")

	appointments, err := queryAppointments(context.Background(), pool, "a.user_id = $1", userId)
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": appointments})
}

func CancelAppointmentUser(c *gin.Context, pool *pgxpool.Pool) {
	userId := c.GetString("userId")

	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	appointment, err := getAppointment(context.Background(), pool, req.AppointmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Cancellation Failed"})
		return
	}
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if appointment.UserID != userId {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized action"})
		return
	}
	// Patients may only cancel before completion. The reserved slot is
	// not released.
	if appointment.IsCompleted {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Appointment already completed"})
		return
	}

	_, err = pool.Exec(context.Background(),
		"UPDATE appointments SET cancelled = TRUE, is_completed = FALSE WHERE appointment_id = $1",
		req.AppointmentID)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment cancelled successfully"})
}
