package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinic-logistics-backend/config"
	"clinic-logistics-backend/internal/calendar"
	"clinic-logistics-backend/internal/model"
	"clinic-logistics-backend/internal/schedule"
	"clinic-logistics-backend/internal/store"
)

func setupRouter(t *testing.T, name string) (*gin.Engine, *store.GormStore) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.ExamResource{},
		&model.Appointment{},
		&model.Product{},
		&model.Supplier{},
		&model.PushSubscription{},
	))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	s := store.NewGormStore(db)
	engine := schedule.NewEngine(s, s, calendar.Default, nil)

	cfg := &config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 1}
	return NewRouter(cfg, s, engine, nil), s
}

func seedResource(t *testing.T, s *store.GormStore, id, name string, duration int) {
	t.Helper()
	require.NoError(t, s.DB().Create(&model.ExamResource{
		ID: id, Name: name, EstimatedDurationMinutes: duration, Active: true,
	}).Error)
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPostAppointment(t *testing.T) {
	router, s := setupRouter(t, "api_post_appt")
	seedResource(t, s, "x", "Ultrasound", 30)

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/appointments", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/appointments", gin.H{"resource_id": "x"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("weekend start", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/appointments", gin.H{
			"requester_id": "p1", "resource_id": "x", "start_time": "2025-01-04T10:00:00Z",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown resource", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/appointments", gin.H{
			"requester_id": "p1", "resource_id": "nope", "start_time": "2025-01-06T10:00:00Z",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("success then resource conflict", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/appointments", gin.H{
			"requester_id": "p1", "resource_id": "x", "start_time": "2025-01-06T09:00:00Z",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var appt model.Appointment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appt))
		assert.NotEmpty(t, appt.ID)
		assert.Equal(t, model.StatusScheduled, appt.Status)

		w = doJSON(router, http.MethodPost, "/api/appointments", gin.H{
			"requester_id": "p2", "resource_id": "x", "start_time": "2025-01-06T09:15:00Z",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	router, s := setupRouter(t, "api_lifecycle")
	seedResource(t, s, "x", "Ultrasound", 30)

	w := doJSON(router, http.MethodPost, "/api/appointments", gin.H{
		"requester_id": "p1",
		"resource_id":  "x",
		"start_time":   "2025-01-06T09:00:00Z",
		"pickup_time":  "2025-01-06T08:30:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var appt model.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appt))

	t.Run("fetch by id", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/appointments/"+appt.ID, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(router, http.MethodGet, "/api/appointments/missing", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("patch clears pickup via explicit null", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/appointments/"+appt.ID,
			bytes.NewBufferString(`{"pickup_time": null}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var updated model.Appointment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
		assert.Nil(t, updated.PickupTime)
	})

	t.Run("empty patch has no self-conflict", func(t *testing.T) {
		w := doJSON(router, http.MethodPatch, "/api/appointments/"+appt.ID, gin.H{})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("list with filters", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/appointments?requester_id=p1&status=SCHEDULED", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var appts []model.Appointment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &appts))
		assert.Len(t, appts, 1)

		w = doJSON(router, http.MethodGet, "/api/appointments?start_from=garbage", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cancel frees the slot and is terminal", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/appointments/"+appt.ID+"/cancel", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var cancelled model.Appointment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
		assert.Equal(t, model.StatusCancelled, cancelled.Status)

		// The previously conflicting window is bookable again.
		w = doJSON(router, http.MethodPost, "/api/appointments", gin.H{
			"requester_id": "p2", "resource_id": "x", "start_time": "2025-01-06T09:00:00Z",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		// And the cancelled record rejects further mutation.
		notes := gin.H{"notes": "too late"}
		w = doJSON(router, http.MethodPatch, "/api/appointments/"+appt.ID, notes)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestResourceHandlers(t *testing.T) {
	router, _ := setupRouter(t, "api_resources")

	w := doJSON(router, http.MethodPost, "/api/resources", gin.H{
		"name": "MRI", "estimated_duration_minutes": 45,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var res model.ExamResource
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Active)

	w = doJSON(router, http.MethodPost, "/api/resources", gin.H{"name": "No Duration"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPatch, "/api/resources/"+res.ID, gin.H{
		"estimated_duration_minutes": 60,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/resources/"+res.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/resources/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptionHandlers(t *testing.T) {
	router, s := setupRouter(t, "api_subs")

	w := doJSON(router, http.MethodPut, "/api/subscriptions", gin.H{"endpoint": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/api/subscriptions", gin.H{
		"endpoint": "https://example.com/push", "p256dh": "k", "auth": "a", "requester_id": "p1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var count int64
	s.DB().Model(&model.PushSubscription{}).Count(&count)
	assert.Equal(t, int64(1), count)

	w = doJSON(router, http.MethodDelete, "/api/subscriptions", gin.H{
		"endpoint": "https://example.com/push",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	// vapid key endpoint reports unconfigured keys
	w = doJSON(router, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
