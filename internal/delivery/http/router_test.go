package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-clinic-scheduling/config"
	"go-clinic-scheduling/internal/delivery/dto"
	"go-clinic-scheduling/internal/delivery/http/handler"
	"go-clinic-scheduling/internal/delivery/http/middleware"
	"go-clinic-scheduling/internal/domain/entity"
	"go-clinic-scheduling/internal/repository"
	"go-clinic-scheduling/internal/service"
	"go-clinic-scheduling/internal/usecase"
	"go-clinic-scheduling/pkg/jwt"
	"go-clinic-scheduling/pkg/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestServer wires the full HTTP stack against an in-memory database
// and an in-process Redis, mirroring the production bootstrap.
func newTestServer(t *testing.T) *mux.Router {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&entity.Patient{},
		&entity.Doctor{},
		&entity.Appointment{},
		&entity.Prescription{},
		&entity.AuditLog{},
	))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
	})
	customValidator := validator.NewValidator()

	patientRepo := repository.NewPatientRepository()
	doctorRepo := repository.NewDoctorRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	prescriptionRepo := repository.NewPrescriptionRepository()
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())

	authUsecase := usecase.NewAuthUsecase(db, log, patientRepo, doctorRepo, auditService, jwtService, redisClient)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, appointmentRepo, doctorRepo, auditService)
	prescriptionUsecase := usecase.NewPrescriptionUsecase(db, log, prescriptionRepo, patientRepo, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, patientRepo)

	router := NewRouter(
		handler.NewAuthHandler(authUsecase, customValidator, jwtService),
		handler.NewDoctorHandler(doctorUsecase),
		handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		handler.NewPrescriptionHandler(prescriptionUsecase, customValidator),
		middleware.NewAuthMiddleware(jwtService, redisClient),
		middleware.NewCORSMiddleware(),
	)
	return router.Setup()
}

func doRequest(t *testing.T, router *mux.Router, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	require.NotEmpty(t, env.Data)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func registerAndLogin(t *testing.T, router *mux.Router) (patientToken, doctorToken string, doctorID int64) {
	t.Helper()

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/auth/register/doctor", "", dto.RegisterDoctorRequest{
		FullName: "Dr. Siti Rahma", Email: "siti@clinic.test", Password: "secret123", Specialization: "Cardiology",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doRequest(t, router, http.MethodPost, "/api/v1/auth/register/patient", "", dto.RegisterPatientRequest{
		FullName: "Budi Santoso", Email: "budi@mail.test", Password: "secret123", Age: 34,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// The doctor roster is public; patients pick a doctor from it.
	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/doctors", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var roster dto.DoctorListResponse
	decodeData(t, env, &roster)
	require.Equal(t, 1, roster.Total)
	doctorID = roster.Doctors[0].ID

	rec, env = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email: "budi@mail.test", Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var tokens dto.TokenResponse
	decodeData(t, env, &tokens)
	patientToken = tokens.AccessToken

	rec, env = doRequest(t, router, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{
		Email: "siti@clinic.test", Password: "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &tokens)
	doctorToken = tokens.AccessToken

	return patientToken, doctorToken, doctorID
}

func TestAppointmentWorkflow(t *testing.T) {
	router := newTestServer(t)
	patientToken, doctorToken, doctorID := registerAndLogin(t, router)

	date := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")

	// Patient books; the appointment starts pending.
	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/appointments", patientToken, dto.CreateAppointmentRequest{
		DoctorID: doctorID, Date: date, TimeSlot: "09:30", Reason: "chest pain follow-up",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.AppointmentResponse
	decodeData(t, env, &created)
	assert.Equal(t, "pending", created.Status)

	// Double booking the same slot is rejected.
	rec, _ = doRequest(t, router, http.MethodPost, "/api/v1/appointments", patientToken, dto.CreateAppointmentRequest{
		DoctorID: doctorID, Date: date, TimeSlot: "09:30", Reason: "another visit",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The doctor sees the booking on that day's schedule, with the patient.
	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/doctors/me/appointments?date="+date, doctorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.AppointmentListResponse
	decodeData(t, env, &list)
	require.Equal(t, 1, list.Total)
	require.NotNil(t, list.Appointments[0].Patient)
	assert.Equal(t, "Budi Santoso", list.Appointments[0].Patient.FullName)

	// Only doctors may confirm.
	rec, _ = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/v1/appointments/%d/confirm", created.ID), patientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/v1/appointments/%d/confirm", created.ID), doctorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed dto.AppointmentResponse
	decodeData(t, env, &confirmed)
	assert.Equal(t, "confirmed", confirmed.Status)

	// Once confirmed, the visit shows up in the patient's upcoming list.
	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/patients/me/appointments/upcoming", patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, created.ID, list.Appointments[0].ID)
}

func TestPrescriptionWorkflow(t *testing.T) {
	router := newTestServer(t)
	patientToken, doctorToken, _ := registerAndLogin(t, router)

	// Find the patient's id from the doctor's side after one appointment.
	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/auth/me", patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me dto.UserResponse
	decodeData(t, env, &me)

	// Only doctors may write prescriptions.
	rec, _ = doRequest(t, router, http.MethodPost, "/api/v1/prescriptions", patientToken, dto.CreatePrescriptionRequest{
		PatientID: me.ID, Medication: "Amoxicillin", Dosage: "500mg", StartDate: "2026-10-15", EndDate: "2026-10-22",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = doRequest(t, router, http.MethodPost, "/api/v1/prescriptions", doctorToken, dto.CreatePrescriptionRequest{
		PatientID: me.ID, Medication: "Amoxicillin", Dosage: "500mg", StartDate: "2026-10-15", EndDate: "2026-10-22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.PrescriptionResponse
	decodeData(t, env, &created)
	assert.Equal(t, "pending", created.Status)

	// The patient sees it and confirms it.
	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/patients/me/prescriptions", patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list dto.PrescriptionListResponse
	decodeData(t, env, &list)
	require.Equal(t, 1, list.Total)
	require.NotNil(t, list.Prescriptions[0].Doctor)

	rec, env = doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/v1/prescriptions/%d/confirm", created.ID), patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var confirmed dto.PrescriptionResponse
	decodeData(t, env, &confirmed)
	assert.Equal(t, "confirmed", confirmed.Status)

	// Doctor-side listing shows the confirmed prescription.
	rec, env = doRequest(t, router, http.MethodGet, "/api/v1/doctors/me/prescriptions", doctorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "confirmed", list.Prescriptions[0].Status)
}

func TestAuthRequiredAndRoleChecks(t *testing.T) {
	router := newTestServer(t)
	patientToken, doctorToken, doctorID := registerAndLogin(t, router)

	// No token.
	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/appointments", "", dto.CreateAppointmentRequest{
		DoctorID: doctorID, Date: "2026-10-15", TimeSlot: "09:30", Reason: "checkup",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Doctors cannot book appointments for themselves.
	rec, _ = doRequest(t, router, http.MethodPost, "/api/v1/appointments", doctorToken, dto.CreateAppointmentRequest{
		DoctorID: doctorID, Date: "2026-10-15", TimeSlot: "09:30", Reason: "checkup",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Patient-only listing rejects doctors and vice versa.
	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/patients/me/prescriptions", doctorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/doctors/me/patients", patientToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutRevokesSession(t *testing.T) {
	router := newTestServer(t)
	patientToken, _, _ := registerAndLogin(t, router)

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/auth/me", patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, router, http.MethodPost, "/api/v1/auth/logout", patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The access token is no longer accepted once revoked.
	rec, _ = doRequest(t, router, http.MethodGet, "/api/v1/auth/me", patientToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	router := newTestServer(t)

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
