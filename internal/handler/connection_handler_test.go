package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ankithlg/PeerBridge/internal/models"
	"github.com/ankithlg/PeerBridge/internal/service"
)

// memConnectionRepo mirrors the latest-row semantics of the SQL layer
// so the full lifecycle can run through the HTTP surface.
type memConnectionRepo struct {
	rows   []models.ConnectionRequest
	nextID int
}

func (m *memConnectionRepo) FindByID(ctx context.Context, id string) (*models.ConnectionRequest, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memConnectionRepo) FindLatestBetween(ctx context.Context, a, b string) (*models.ConnectionRequest, error) {
	var latest *models.ConnectionRequest
	for i := range m.rows {
		r := m.rows[i]
		if (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a) {
			if latest == nil || r.CreatedAt.After(latest.CreatedAt) ||
				(r.CreatedAt.Equal(latest.CreatedAt) && r.ID > latest.ID) {
				row := r
				latest = &row
			}
		}
	}
	if latest == nil {
		return nil, sql.ErrNoRows
	}
	return latest, nil
}

func (m *memConnectionRepo) Create(ctx context.Context, req *models.ConnectionRequest) error {
	m.nextID++
	req.ID = fmt.Sprintf("req-%03d", m.nextID)
	m.rows = append(m.rows, *req)
	return nil
}

func (m *memConnectionRepo) UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus, ts time.Time) (*models.ConnectionRequest, error) {
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].Status == models.ConnectionPending {
			m.rows[i].Status = status
			m.rows[i].CreatedAt = ts
			row := m.rows[i]
			return &row, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memConnectionRepo) DeleteBetween(ctx context.Context, a, b string) (int64, error) {
	var kept []models.ConnectionRequest
	var deleted int64
	for _, r := range m.rows {
		if (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return deleted, nil
}

func (m *memConnectionRepo) ExistsAccepted(ctx context.Context, a, b string) (bool, error) {
	latest, err := m.FindLatestBetween(ctx, a, b)
	if err != nil {
		return false, nil
	}
	return latest.Status == models.ConnectionAccepted, nil
}

func (m *memConnectionRepo) ListForStudent(ctx context.Context, studentID string) ([]models.ConnectionWithCounterpart, error) {
	var out []models.ConnectionWithCounterpart
	for _, r := range m.rows {
		if r.SenderID == studentID || r.ReceiverID == studentID {
			out = append(out, models.ConnectionWithCounterpart{ConnectionRequest: r, Incoming: r.ReceiverID == studentID})
		}
	}
	return out, nil
}

type memStudentDirectory struct{}

func (memStudentDirectory) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if id == "ghost" {
		return nil, sql.ErrNoRows
	}
	return &models.Student{ID: id, Active: true}, nil
}

func buildConnectionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewConnectionService(&memConnectionRepo{}, memStudentDirectory{}, nil, zap.NewNop(), nil)
	h := NewConnectionHandler(svc)

	router := gin.New()
	router.Use(authAs())
	router.POST("/connections", h.Request)
	router.POST("/connections/:id/respond", h.Respond)
	router.GET("/connections", h.List)
	router.GET("/connections/status", h.Status)
	router.DELETE("/connections", h.Remove)
	return router
}

func TestConnectionLifecycleRoutes(t *testing.T) {
	router := buildConnectionRouter()

	var requestID string

	t.Run("request creates pending", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"receiver_id":"bob"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"status":"PENDING"`)

		var envelope struct {
			Data models.ConnectionRequest `json:"data"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
		requestID = envelope.Data.ID
		require.NotEmpty(t, requestID)
	})

	t.Run("duplicate request conflicts", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"receiver_id":"alice"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Student", "bob")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusConflict, resp.Code)
		require.Contains(t, resp.Body.String(), "REQUEST_PENDING")
	})

	t.Run("status visible to both sides", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/connections/status?studentId=alice", nil)
		req.Header.Set("X-Test-Student", "bob")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"status":"PENDING"`)
	})

	t.Run("sender cannot respond", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/connections/"+requestID+"/respond", bytes.NewBufferString(`{"decision":"ACCEPTED"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
		require.Contains(t, resp.Body.String(), "NOT_RECEIVER")
	})

	t.Run("receiver accepts", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/connections/"+requestID+"/respond", bytes.NewBufferString(`{"decision":"ACCEPTED"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Student", "bob")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"status":"ACCEPTED"`)
	})

	t.Run("request while accepted conflicts", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"receiver_id":"bob"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusConflict, resp.Code)
		require.Contains(t, resp.Body.String(), "ALREADY_CONNECTED")
	})

	t.Run("list shows connection", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/connections", nil)
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), requestID)
	})

	t.Run("remove accepted connection", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodDelete, "/connections?studentId=bob", nil)
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "CONNECTION_REMOVED")
	})

	t.Run("status after removal reports no history", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/connections/status?studentId=bob", nil)
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "No connection history")
	})
}

func TestConnectionRouteValidation(t *testing.T) {
	router := buildConnectionRouter()

	t.Run("self request rejected", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"receiver_id":"alice"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		require.Contains(t, resp.Body.String(), "SELF_CONNECTION")
	})

	t.Run("unknown receiver", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{"receiver_id":"ghost"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("missing receiver_id", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/connections", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Test-Student", "alice")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("missing auth", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/connections", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}
