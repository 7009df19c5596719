package services

import (
	"context"
	"errors"
	"log"
	"net/http"

	"prescripto_back_end_go/auth"
	"prescripto_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func LoginDoctor(c *gin.Context, pool *pgxpool.Pool) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	var doctorId, hashed string
	err := pool.QueryRow(context.Background(),
		"SELECT doctor_id, hashed_password FROM doctors WHERE email = $1", req.Email).Scan(&doctorId, &hashed)
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

	token, err := auth.GenerateToken(doctorId, auth.RoleDoctor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

// DoctorList is the public catalogue the patient app browses. Email and
// password stay out of the payload; slots_booked rides along so the
// client-side generator can mark reserved slots.
func DoctorList(c *gin.Context, pool *pgxpool.Pool) {
	rows, err := pool.Query(context.Background(),
		`SELECT doctor_id, name, image, speciality, degree, experience, about,
		        fees, available, address_line1, address_line2
		 FROM doctors ORDER BY created_at`)
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	var doctors []models.Doctor
	for rows.Next() {
		var d models.Doctor
		err := rows.Scan(&d.DoctorID, &d.Name, &d.Image, &d.Speciality, &d.Degree,
			&d.Experience, &d.About, &d.Fees, &d.Available,
			&d.Address.Line1, &d.Address.Line2)
		if err != nil {
			log.Println("Row scan error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		log.Println("Rows error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	for i := range doctors {
		booked, err := slotsBookedFor(context.Background(), pool, doctors[i].DoctorID)
		if err != nil {
			log.Println("Query error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		doctors[i].SlotsBooked = booked
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "doctors": doctors})
}

func DoctorAppointments(c *gin.Context, pool *pgxpool.Pool) {
	doctorId := c.GetString("docId")

	appointments, err := queryAppointments(context.Background(), pool, "a.doctor_id = $1", doctorId)
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "appointments": appointments})
}

func CompleteAppointment(c *gin.Context, pool *pgxpool.Pool) {
	doctorId := c.GetString("docId")

	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	appointment, err := getAppointment(context.Background(), pool, req.AppointmentID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && appointment.DocID != doctorId) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Mark Failed"})
		return
	}
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	// Completing is allowed even after the slot has expired. Writing
	// both flags keeps cancelled and is_completed mutually exclusive.
	_, err = pool.Exec(context.Background(),
		"UPDATE appointments SET is_completed = TRUE, cancelled = FALSE WHERE appointment_id = $1",
		req.AppointmentID)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	message := "Appointment marked completed"
	if appointment.Expired {
		message = "Appointment marked completed (after scheduled time)"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func CancelAppointmentDoctor(c *gin.Context, pool *pgxpool.Pool) {
	doctorId := c.GetString("docId")

	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	appointment, err := getAppointment(context.Background(), pool, req.AppointmentID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && appointment.DocID != doctorId) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Cancellation Failed"})
		return
	}
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	// Doctors may cancel after expiry too.
	_, err = pool.Exec(context.Background(),
		"UPDATE appointments SET cancelled = TRUE, is_completed = FALSE WHERE appointment_id = $1",
		req.AppointmentID)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	message := "Appointment cancelled successfully"
	if appointment.Expired {
		message = "Appointment cancelled (after scheduled time)"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func DoctorDashboardData(c *gin.Context, pool *pgxpool.Pool) {
	doctorId := c.GetString("docId")

	appointments, err := queryAppointments(context.Background(), pool, "a.doctor_id = $1", doctorId)
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dashData": BuildDoctorDashboard(appointments)})
}

func DoctorProfile(c *gin.Context, pool *pgxpool.Pool) {
	doctorId := c.GetString("docId")

	var d models.Doctor
	err := pool.QueryRow(context.Background(),
		`SELECT doctor_id, name, email, image, speciality, degree, experience, about,
		        fees, available, address_line1, address_line2
		 FROM doctors WHERE doctor_id = $1`, doctorId).Scan(
		&d.DoctorID, &d.Name, &d.Email, &d.Image, &d.Speciality, &d.Degree,
		&d.Experience, &d.About, &d.Fees, &d.Available,
		&d.Address.Line1, &d.Address.Line2)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Doctor not found"})
		return
	}
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	booked, err := slotsBookedFor(context.Background(), pool, doctorId)
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	d.SlotsBooked = booked

	c.JSON(http.StatusOK, gin.H{"success": true, "profileData": d})
}

func UpdateDoctorProfile(c *gin.Context, pool *pgxpool.Pool) {
	doctorId := c.GetString("docId")

	var req models.UpdateDoctorProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	_, err := pool.Exec(context.Background(),
		`UPDATE doctors SET fees = $1, address_line1 = $2, address_line2 = $3, available = $4
		 WHERE doctor_id = $5`,
		req.Fees, req.Address.Line1, req.Address.Line2, req.Available, doctorId)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Profile Updated"})
}
