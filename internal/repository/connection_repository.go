package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ankithlg/PeerBridge/internal/models"
)

// ConnectionRepository provides database access for connection requests.
type ConnectionRepository struct {
	db *sqlx.DB
}

// NewConnectionRepository creates a new instance of ConnectionRepository.
func NewConnectionRepository(db *sqlx.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// FindByID returns a connection request by identifier.
func (r *ConnectionRepository) FindByID(ctx context.Context, id string) (*models.ConnectionRequest, error) {
	const query = `SELECT id, sender_id, receiver_id, status, created_at FROM connection_requests WHERE id = $1 LIMIT 1`
	var req models.ConnectionRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find connection request by id: %w", err)
	}
	return &req, nil
}

// FindLatestBetween returns the most recent request row between the pair
// in either direction. Rows are ordered by created_at with id as the
// tie-break so concurrent inserts within the same timestamp still
// resolve consistently. This is the single primitive every lifecycle
// decision rests on.
func (r *ConnectionRepository) FindLatestBetween(ctx context.Context, a, b string) (*models.ConnectionRequest, error) {
	const query = `SELECT id, sender_id, receiver_id, status, created_at FROM connection_requests
        WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
        ORDER BY created_at DESC, id DESC LIMIT 1`
	var req models.ConnectionRequest
	if err := r.db.GetContext(ctx, &req, query, a, b); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find latest connection between pair: %w", err)
	}
	return &req, nil
}

// Create inserts a new connection request row.
func (r *ConnectionRepository) Create(ctx context.Context, req *models.ConnectionRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO connection_requests (id, sender_id, receiver_id, status, created_at) VALUES (:id, :sender_id, :receiver_id, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create connection request: %w", err)
	}
	return nil
}

// UpdateStatus transitions a PENDING row in place, refreshing its
// timestamp. Returns sql.ErrNoRows when the row is gone or no longer
// pending, so a second responder observes a conflict rather than
// silently overwriting the first decision.
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus, ts time.Time) (*models.ConnectionRequest, error) {
	const query = `UPDATE connection_requests SET status = $2, created_at = $3 WHERE id = $1 AND status = $4
        RETURNING id, sender_id, receiver_id, status, created_at`
	var req models.ConnectionRequest
	if err := r.db.GetContext(ctx, &req, query, id, status, ts, models.ConnectionPending); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("update connection status: %w", err)
	}
	return &req, nil
}

// DeleteBetween removes every request row between the pair in both
// directions and reports how many rows were deleted.
func (r *ConnectionRepository) DeleteBetween(ctx context.Context, a, b string) (int64, error) {
	const query = `DELETE FROM connection_requests
        WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)`
	res, err := r.db.ExecContext(ctx, query, a, b)
	if err != nil {
		return 0, fmt.Errorf("delete connections between pair: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted connections: %w", err)
	}
	return deleted, nil
}

// ExistsAccepted reports whether the latest row between the pair is
// ACCEPTED. Historical rejected rows beneath a newer accepted row do
// not matter; only the latest state does.
func (r *ConnectionRepository) ExistsAccepted(ctx context.Context, a, b string) (bool, error) {
	const query = `SELECT COALESCE((SELECT status FROM connection_requests
        WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
        ORDER BY created_at DESC, id DESC LIMIT 1), '') = $3`
	var accepted bool
	if err := r.db.GetContext(ctx, &accepted, query, a, b, models.ConnectionAccepted); err != nil {
		return false, fmt.Errorf("check accepted connection: %w", err)
	}
	return accepted, nil
}

// ListForStudent returns every request row involving the student, newest
// first, joined with the counterpart's profile.
func (r *ConnectionRepository) ListForStudent(ctx context.Context, studentID string) ([]models.ConnectionWithCounterpart, error) {
	const query = `SELECT cr.id, cr.sender_id, cr.receiver_id, cr.status, cr.created_at,
        s.id AS "counterpart.id", s.email AS "counterpart.email", s.name AS "counterpart.name",
        s.bio AS "counterpart.bio", s.preferred_mode AS "counterpart.preferred_mode",
        s.available_time AS "counterpart.available_time",
        (cr.receiver_id = $1) AS incoming
        FROM connection_requests cr
        JOIN students s ON s.id = CASE WHEN cr.sender_id = $1 THEN cr.receiver_id ELSE cr.sender_id END
        WHERE cr.sender_id = $1 OR cr.receiver_id = $1
        ORDER BY cr.created_at DESC, cr.id DESC`
	var rows []models.ConnectionWithCounterpart
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list connections for student: %w", err)
	}
	return rows, nil
}

// ListAcceptedForStudent returns accepted connections only, used by the
// export flow. The counterpart join mirrors ListForStudent.
func (r *ConnectionRepository) ListAcceptedForStudent(ctx context.Context, studentID string) ([]models.ConnectionWithCounterpart, error) {
	const query = `SELECT cr.id, cr.sender_id, cr.receiver_id, cr.status, cr.created_at,
        s.id AS "counterpart.id", s.email AS "counterpart.email", s.name AS "counterpart.name",
        s.bio AS "counterpart.bio", s.preferred_mode AS "counterpart.preferred_mode",
        s.available_time AS "counterpart.available_time",
        (cr.receiver_id = $1) AS incoming
        FROM connection_requests cr
        JOIN students s ON s.id = CASE WHEN cr.sender_id = $1 THEN cr.receiver_id ELSE cr.sender_id END
        WHERE (cr.sender_id = $1 OR cr.receiver_id = $1) AND cr.status = $2
        ORDER BY cr.created_at DESC, cr.id DESC`
	var rows []models.ConnectionWithCounterpart
	if err := r.db.SelectContext(ctx, &rows, query, studentID, models.ConnectionAccepted); err != nil {
		return nil, fmt.Errorf("list accepted connections: %w", err)
	}
	return rows, nil
}
