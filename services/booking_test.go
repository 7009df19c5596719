package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"prescripto_back_end_go/auth"
	"prescripto_back_end_go/db"
	"prescripto_back_end_go/middleware"
	"prescripto_back_end_go/scheduling"
	"prescripto_back_end_go/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
)

func setup(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	_ = godotenv.Load("../.env")
	if os.Getenv("DATABASE_HOST") == "" || os.Getenv("JWT_SECRET") == "" {
		t.Skip("DATABASE_HOST or JWT_SECRET not set")
	}

	pool, err := db.InitDatabase()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(pool.Close)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/user/book-appointment", middleware.AuthUser(), func(c *gin.Context) {
		services.BookAppointment(c, pool)
	})
	r.GET("/api/user/appointments", middleware.AuthUser(), func(c *gin.Context) {
		services.ListUserAppointments(c, pool)
	})
	r.POST("/api/user/cancel-appointment", middleware.AuthUser(), func(c *gin.Context) {
		services.CancelAppointmentUser(c, pool)
	})
	r.GET("/api/user/slots/:docId", func(c *gin.Context) {
		services.GetDoctorSlots(c, pool)
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
	r.POST("/api/admin/change-availability", middleware.AuthAdmin(), func(c *gin.Context) {
		services.ChangeAvailability(c, pool)
	})
	return r, pool
}

func createDoctor(t *testing.T, pool *pgxpool.Pool, fees int) (docId, dToken string) {
	t.Helper()
	email := fmt.Sprintf("doc-%s@test.com", uuid.New().String()[:8])
	err := pool.QueryRow(context.Background(),
		`INSERT INTO doctors (name, email, hashed_password, speciality, degree, experience, fees)
		 VALUES ($1, $2, 'x', 'General physician', 'MBBS', '4 Years', $3)
		 RETURNING doctor_id`, "Dr Test", email, fees).Scan(&docId)
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	dToken, err = auth.GenerateToken(docId, auth.RoleDoctor)
	if err != nil {
		t.Fatalf("doctor token: %v", err)
	}
	return docId, dToken
}

func createPatient(t *testing.T, pool *pgxpool.Pool) (userId, token string) {
	t.Helper()
	email := fmt.Sprintf("user-%s@test.com", uuid.New().String()[:8])
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (name, email, hashed_password, phone, gender, dob, address_line1)
		 VALUES ($1, $2, 'x', '5550100', 'Female', '1990-04-02', '12 Main St')
		 RETURNING user_id`, "Test Patient", email).Scan(&userId)
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	token, err = auth.GenerateToken(userId, auth.RolePatient)
	if err != nil {
		t.Fatalf("patient token: %v", err)
	}
	return userId, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, header, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set(header, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return w.Code, out
}

// a guaranteed-bookable slot a few days out
func futureSlot(t *testing.T) (slotDate, slotTime string) {
	t.Helper()
	buckets := scheduling.GenerateSlots(nil, time.Now())
	slot := buckets[3][0]
	return scheduling.SlotDateKey(slot.Datetime), slot.Time
}

func appointmentFlags(t *testing.T, pool *pgxpool.Pool, appointmentId string) (cancelled, completed bool) {
	t.Helper()
	err := pool.QueryRow(context.Background(),
		"SELECT cancelled, is_completed FROM appointments WHERE appointment_id = $1",
		appointmentId).Scan(&cancelled, &completed)
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	return cancelled, completed
}

func lastAppointmentID(t *testing.T, pool *pgxpool.Pool, docId string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(),
		"SELECT appointment_id FROM appointments WHERE doctor_id = $1 ORDER BY seq DESC LIMIT 1",
		docId).Scan(&id)
	if err != nil {
		t.Fatalf("appointment id: %v", err)
	}
	return id
}

func TestBookAppointment(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	_, token := createPatient(t, pool)
	slotDate, slotTime := futureSlot(t)

	code, out := doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", token,
		map[string]string{"docId": docId, "slotDate": slotDate, "slotTime": slotTime})
	if code != http.StatusOK || out["success"] != true {
		t.Fatalf("booking failed: %d %v", code, out)
	}

	// the slot shows as booked in the generated window
	code, out = doJSON(t, r, http.MethodGet, "/api/user/slots/"+docId, "", "", nil)
	if code != http.StatusOK || out["success"] != true {
		t.Fatalf("slots: %d %v", code, out)
	}
	found := false
	for _, rawBucket := range out["slots"].([]interface{}) {
		for _, rawSlot := range rawBucket.([]interface{}) {
			slot := rawSlot.(map[string]interface{})
			if slot["time"] == slotTime && slot["booked"] == true {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("booked slot not marked in generated window")
	}
}

func TestBookAppointmentRejectsTakenSlot(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	_, tokenA := createPatient(t, pool)
	_, tokenB := createPatient(t, pool)
	slotDate, slotTime := futureSlot(t)

	body := map[string]string{"docId": docId, "slotDate": slotDate, "slotTime": slotTime}
	_, out := doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", tokenA, body)
	if out["success"] != true {
		t.Fatalf("first booking failed: %v", out)
	}
	_, out = doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", tokenB, body)
	if out["success"] != false {
		t.Fatalf("second booking of the same slot should fail: %v", out)
	}
}

func TestBookAppointmentRejectsIncompleteProfile(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	userId, token := createPatient(t, pool)
	if _, err := pool.Exec(context.Background(),
		"UPDATE users SET phone = '000000000' WHERE user_id = $1", userId); err != nil {
		t.Fatalf("update: %v", err)
	}
	slotDate, slotTime := futureSlot(t)

	_, out := doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", token,
		map[string]string{"docId": docId, "slotDate": slotDate, "slotTime": slotTime})
	if out["success"] != false {
		t.Fatalf("booking with incomplete profile should fail: %v", out)
	}
}

func TestBookAppointmentRejectsOffWindowSlot(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	_, token := createPatient(t, pool)

	yesterday := time.Now().AddDate(0, 0, -1)
	_, out := doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", token,
		map[string]string{"docId": docId, "slotDate": scheduling.SlotDateKey(yesterday), "slotTime": "10:00 AM"})
	if out["success"] != false {
		t.Fatalf("booking a past slot should fail: %v", out)
	}
}

func TestConcurrentBookingSingleWinner(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	slotDate, slotTime := futureSlot(t)

	const callers = 4
	tokens := make([]string, callers)
	for i := range tokens {
		_, tokens[i] = createPatient(t, pool)
	}

	var wg sync.WaitGroup
	results := make([]bool, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf bytes.Buffer
			json.NewEncoder(&buf).Encode(map[string]string{
				"docId": docId, "slotDate": slotDate, "slotTime": slotTime,
			})
			req := httptest.NewRequest(http.MethodPost, "/api/user/book-appointment", &buf)
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("token", tokens[i])
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			var out map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &out); err == nil {
				results[i] = out["success"] == true
			}
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, ok := range results {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("%d concurrent bookings succeeded for one slot, want exactly 1", winners)
	}

	var count int
	if err := pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND slot_date = $2 AND slot_time = $3",
		docId, slotDate, slotTime).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("%d appointment rows persisted, want 1", count)
	}
}

func TestCancelThenCompleteLeavesOneFlag(t *testing.T) {
	r, pool := setup(t)
	docId, dToken := createDoctor(t, pool, 500)
	_, token := createPatient(t, pool)
	slotDate, slotTime := futureSlot(t)

	_, out := doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", token,
		map[string]string{"docId": docId, "slotDate": slotDate, "slotTime": slotTime})
	if out["success"] != true {
		t.Fatalf("booking failed: %v", out)
	}
	appointmentId := lastAppointmentID(t, pool, docId)

	_, out = doJSON(t, r, http.MethodPost, "/api/doctor/cancel-appointment", "dToken", dToken,
		map[string]string{"appointmentId": appointmentId})
	if out["success"] != true {
		t.Fatalf("cancel failed: %v", out)
	}
	_, out = doJSON(t, r, http.MethodPost, "/api/doctor/complete-appointment", "dToken", dToken,
		map[string]string{"appointmentId": appointmentId})
	if out["success"] != true {
		t.Fatalf("complete failed: %v", out)
	}

	cancelled, completed := appointmentFlags(t, pool, appointmentId)
	if cancelled == completed {
		t.Fatalf("cancelled=%v isCompleted=%v, exactly one must be true", cancelled, completed)
	}
	if !completed {
		t.Fatal("the later transition should win")
	}
}

func TestPatientCannotCancelCompleted(t *testing.T) {
	r, pool := setup(t)
	docId, dToken := createDoctor(t, pool, 500)
	_, token := createPatient(t, pool)
	slotDate, slotTime := futureSlot(t)

	_, out := doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", token,
		map[string]string{"docId": docId, "slotDate": slotDate, "slotTime": slotTime})
	if out["success"] != true {
		t.Fatalf("booking failed: %v", out)
	}
	appointmentId := lastAppointmentID(t, pool, docId)

	_, out = doJSON(t, r, http.MethodPost, "/api/doctor/complete-appointment", "dToken", dToken,
		map[string]string{"appointmentId": appointmentId})
	if out["success"] != true {
		t.Fatalf("complete failed: %v", out)
	}

	_, out = doJSON(t, r, http.MethodPost, "/api/user/cancel-appointment", "token", token,
		map[string]string{"appointmentId": appointmentId})
	if out["success"] != false {
		t.Fatalf("patient cancelled a completed appointment: %v", out)
	}
}

func TestPatientCannotCancelSomeoneElses(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	_, owner := createPatient(t, pool)
	_, intruder := createPatient(t, pool)
	slotDate, slotTime := futureSlot(t)

	_, out := doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", owner,
		map[string]string{"docId": docId, "slotDate": slotDate, "slotTime": slotTime})
	if out["success"] != true {
		t.Fatalf("booking failed: %v", out)
	}
	appointmentId := lastAppointmentID(t, pool, docId)

	code, out := doJSON(t, r, http.MethodPost, "/api/user/cancel-appointment", "token", intruder,
		map[string]string{"appointmentId": appointmentId})
	if code != http.StatusUnauthorized || out["success"] != false {
		t.Fatalf("foreign cancel should be rejected: %d %v", code, out)
	}
}

func TestCancelDoesNotFreeSlot(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	_, tokenA := createPatient(t, pool)
	_, tokenB := createPatient(t, pool)
	slotDate, slotTime := futureSlot(t)

	body := map[string]string{"docId": docId, "slotDate": slotDate, "slotTime": slotTime}
	_, out := doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", tokenA, body)
	if out["success"] != true {
		t.Fatalf("booking failed: %v", out)
	}
	appointmentId := lastAppointmentID(t, pool, docId)

	_, out = doJSON(t, r, http.MethodPost, "/api/user/cancel-appointment", "token", tokenA,
		map[string]string{"appointmentId": appointmentId})
	if out["success"] != true {
		t.Fatalf("cancel failed: %v", out)
	}

	_, out = doJSON(t, r, http.MethodPost, "/api/user/book-appointment", "token", tokenB, body)
	if out["success"] != false {
		t.Fatalf("cancelled slot should stay reserved: %v", out)
	}
}

func TestDoctorDashboard(t *testing.T) {
	r, pool := setup(t)
	docId, dToken := createDoctor(t, pool, 500)
	userA, _ := createPatient(t, pool)
	userB, _ := createPatient(t, pool)

	seed := []struct {
		userId    string
		amount    int
		completed bool
		payment   bool
	}{
		{userA, 500, true, false},
		{userB, 300, false, true},
		{userA, 200, false, false},
	}
	for i, s := range seed {
		_, err := pool.Exec(context.Background(),
			`INSERT INTO appointments (doctor_id, user_id, slot_date, slot_time, amount, is_completed, payment)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			docId, s.userId, "1_1_2030", fmt.Sprintf("%d:00 AM", 9+i), s.amount, s.completed, s.payment)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	code, out := doJSON(t, r, http.MethodGet, "/api/doctor/dashboard", "dToken", dToken, nil)
	if code != http.StatusOK || out["success"] != true {
		t.Fatalf("dashboard: %d %v", code, out)
	}
	dash := out["dashData"].(map[string]interface{})
	if dash["earnings"].(float64) != 800 {
		t.Errorf("earnings = %v, want 800", dash["earnings"])
	}
	if dash["appointments"].(float64) != 3 {
		t.Errorf("appointments = %v, want 3", dash["appointments"])
	}
	if dash["patients"].(float64) != 2 {
		t.Errorf("patients = %v, want 2", dash["patients"])
	}
	latest := dash["latestAppointments"].([]interface{})
	if len(latest) != 3 {
		t.Fatalf("latest = %d entries, want 3", len(latest))
	}
	if latest[0].(map[string]interface{})["amount"].(float64) != 200 {
		t.Errorf("latest should be in reverse insertion order, got %v first", latest[0])
	}
}

func TestChangeAvailabilityToggles(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	aToken, err := auth.GenerateToken("admin", auth.RoleAdmin)
	if err != nil {
		t.Fatalf("admin token: %v", err)
	}

	available := func() bool {
		var v bool
		if err := pool.QueryRow(context.Background(),
			"SELECT available FROM doctors WHERE doctor_id = $1", docId).Scan(&v); err != nil {
			t.Fatalf("query: %v", err)
		}
		return v
	}

	before := available()
	_, out := doJSON(t, r, http.MethodPost, "/api/admin/change-availability", "aToken", aToken,
		map[string]string{"docId": docId})
	if out["success"] != true {
		t.Fatalf("toggle failed: %v", out)
	}
	if available() == before {
		t.Fatal("available flag did not toggle")
	}
}

func TestListUserAppointmentsTagsExpired(t *testing.T) {
	r, pool := setup(t)
	docId, _ := createDoctor(t, pool, 500)
	userId, token := createPatient(t, pool)

	past := time.Now().Add(-2 * time.Hour)
	_, err := pool.Exec(context.Background(),
		`INSERT INTO appointments (doctor_id, user_id, slot_date, slot_time, amount)
		 VALUES ($1, $2, $3, $4, 500)`,
		docId, userId, scheduling.SlotDateKey(past), scheduling.FormatSlotTime(past))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	code, out := doJSON(t, r, http.MethodGet, "/api/user/appointments", "token", token, nil)
	if code != http.StatusOK || out["success"] != true {
		t.Fatalf("list: %d %v", code, out)
	}
	appointments := out["appointments"].([]interface{})
	if len(appointments) != 1 {
		t.Fatalf("got %d appointments, want 1", len(appointments))
	}
	if appointments[0].(map[string]interface{})["expired"] != true {
		t.Fatal("two hour old appointment should be tagged expired")
	}
}
