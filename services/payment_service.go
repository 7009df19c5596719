package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"prescripto_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	razorpay "github.com/razorpay/razorpay-go"
)

func razorpayClient() *razorpay.Client {
	return razorpay.NewClient(os.Getenv("RAZORPAY_KEY_ID"), os.Getenv("RAZORPAY_KEY_SECRET"))
}

// PaymentRazorpay creates a razorpay order for an appointment. The
// appointment id travels in the order receipt so verification can find
// its way back without extra state.
func PaymentRazorpay(c *gin.Context, pool *pgxpool.Pool) {
	userId := c.GetString("userId")

	var req models.AppointmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	appointment, err := getAppointment(context.Background(), pool, req.AppointmentID)
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Appointment Cancelled or not found"})
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
	if appointment.Cancelled {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Appointment Cancelled or not found"})
		return
	}
	if appointment.Payment {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Payment already done"})
		return
	}

	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "INR"
	}

	// amount is in the smallest currency unit
	data := map[string]interface{}{
		"amount":   appointment.Amount * 100,
		"currency": currency,
		"receipt":  appointment.AppointmentID,
	}
	order, err := razorpayClient().Order.Create(data, nil)
	if err != nil {
		log.Println("Razorpay order error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create payment order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// VerifyRazorpay fetches the order back from razorpay and marks the
// appointment paid when the gateway reports it as such.
func VerifyRazorpay(c *gin.Context, pool *pgxpool.Pool) {
	var req struct {
		RazorpayOrderID string `json:"razorpay_order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing Details"})
		return
	}

	order, err := razorpayClient().Order.Fetch(req.RazorpayOrderID, nil, nil)
	if err != nil {
		log.Println("Razorpay fetch error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Payment verification failed"})
		return
	}

	status, _ := order["status"].(string)
	if status != "paid" {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Payment Failed"})
		return
	}

	appointmentId, _ := order["receipt"].(string)
	tag, err := pool.Exec(context.Background(),
		"UPDATE appointments SET payment = TRUE WHERE appointment_id = $1", appointmentId)
	if err != nil {
		log.Println("Update error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Payment Failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Payment Successful"})
}
