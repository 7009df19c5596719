package services

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"

	"prescripto_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jung-kurt/gofpdf"
)

// AppointmentReceipt renders a PDF receipt for a paid or completed
// appointment belonging to the calling patient.
func AppointmentReceipt(c *gin.Context, pool *pgxpool.Pool) {
	userId := c.GetString("userId")
	appointmentId := c.Param("appointmentId")

	appointments, err := queryAppointments(context.Background(), pool, "a.appointment_id = $1", appointmentId)
	if err != nil {
		log.Println("Query error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if len(appointments) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Appointment not found"})
		return
	}
	appointment := appointments[0]

	if appointment.UserID != userId {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized action"})
		return
	}
	if !appointment.Payment && !appointment.IsCompleted {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Receipt available after payment or completion"})
		return
	}

	pdf, err := buildReceiptPDF(appointment)
	if err != nil {
		log.Println("PDF error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not generate receipt"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", appointment.AppointmentID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func buildReceiptPDF(a models.Appointment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Prescripto - Appointment Receipt", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Appointment", "1", 1, "C", false, 0, "")
	receiptRow(pdf, "Appointment ID", a.AppointmentID)
	receiptRow(pdf, "Doctor", a.DocData.Name)
	receiptRow(pdf, "Speciality", a.DocData.Speciality)
	receiptRow(pdf, "Patient", a.UserData.Name)
	receiptRow(pdf, "Date", a.SlotDate)
	receiptRow(pdf, "Time", a.SlotTime)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 10, "Payment", "1", 1, "C", false, 0, "")
	status := "Paid online"
	if !a.Payment {
		status = "Settled at clinic"
	}
	receiptRow(pdf, "Status", status)
	pdf.SetFont("Arial", "B", 13)
	receiptRow(pdf, "Amount", fmt.Sprintf("%d", a.Amount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func receiptRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(60, 8, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, value, "1", 1, "L", false, 0, "")
}
