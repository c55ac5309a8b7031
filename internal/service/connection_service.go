package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ankithlg/PeerBridge/internal/models"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
)

type connectionRepository interface {
	FindByID(ctx context.Context, id string) (*models.ConnectionRequest, error)
	FindLatestBetween(ctx context.Context, a, b string) (*models.ConnectionRequest, error)
	Create(ctx context.Context, req *models.ConnectionRequest) error
	UpdateStatus(ctx context.Context, id string, status models.ConnectionStatus, ts time.Time) (*models.ConnectionRequest, error)
	DeleteBetween(ctx context.Context, a, b string) (int64, error)
	ExistsAccepted(ctx context.Context, a, b string) (bool, error)
	ListForStudent(ctx context.Context, studentID string) ([]models.ConnectionWithCounterpart, error)
}

type connectionStudentDirectory interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// ConnectionEvent notifies listeners that the relationship state between
// two students changed. Used to drop stale match caches off the request
// path.
type ConnectionEvent struct {
	StudentA string
	StudentB string
}

// ConnectionService owns the connection-request lifecycle between pairs
// of students.
type ConnectionService struct {
	repo     connectionRepository
	students connectionStudentDirectory
	metrics  *MetricsService
	logger   *zap.Logger
	onChange func(ConnectionEvent)

	// pairLocks serializes check-then-create and read-modify-write
	// sequences per unordered pair. Striped so unrelated pairs do not
	// contend.
	pairLocks [64]sync.Mutex
}

// NewConnectionService constructs the connection service. metrics and
// onChange may be nil when not wired.
func NewConnectionService(repo connectionRepository, students connectionStudentDirectory, metrics *MetricsService, logger *zap.Logger, onChange func(ConnectionEvent)) *ConnectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionService{repo: repo, students: students, metrics: metrics, logger: logger, onChange: onChange}
}

// pairKey returns the canonical form of an unordered pair.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func (s *ConnectionService) lockPair(a, b string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(pairKey(a, b)))
	m := &s.pairLocks[h.Sum32()%uint32(len(s.pairLocks))]
	m.Lock()
	return m
}

// Request creates a new PENDING request from sender to receiver.
// Permitted only when the pair has no history or its latest row is
// REJECTED.
func (s *ConnectionService) Request(ctx context.Context, senderID, receiverID string) (*models.ConnectionRequest, error) {
	if senderID == receiverID {
		return nil, appErrors.ErrSelfConnection
	}

	if _, err := s.students.FindByID(ctx, senderID); err != nil {
		return nil, studentLookupError(err, senderID)
	}
	if _, err := s.students.FindByID(ctx, receiverID); err != nil {
		return nil, studentLookupError(err, receiverID)
	}

	mu := s.lockPair(senderID, receiverID)
	defer mu.Unlock()

	latest, err := s.repo.FindLatestBetween(ctx, senderID, receiverID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect connection history")
	}

	if latest != nil {
		switch latest.Status {
		case models.ConnectionAccepted:
			return nil, appErrors.ErrAlreadyConnected
		case models.ConnectionPending:
			return nil, appErrors.ErrRequestPending
		}
	}

	req := &models.ConnectionRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.ConnectionPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create connection request")
	}

	s.metrics.RecordConnectionTransition("requested")
	s.logger.Info("connection requested",
		zap.String("request_id", req.ID),
		zap.String("sender_id", senderID),
		zap.String("receiver_id", receiverID))
	return req, nil
}

// Respond lets the receiver of a PENDING request accept or reject it.
// The row is updated in place and its timestamp refreshed so it stays
// the latest row for the pair.
func (s *ConnectionService) Respond(ctx context.Context, requestID, responderID string, decision models.ConnectionDecision) (*models.ConnectionRequest, error) {
	if !decision.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid decision %q", decision))
	}

	req, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "connection request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load connection request")
	}

	if req.ReceiverID != responderID {
		return nil, appErrors.ErrNotReceiver
	}

	mu := s.lockPair(req.SenderID, req.ReceiverID)
	defer mu.Unlock()

	updated, err := s.repo.UpdateStatus(ctx, req.ID, decision.Status(), time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// The row left PENDING between our read and the update.
			return nil, appErrors.Clone(appErrors.ErrConflict, "request already resolved")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update connection request")
	}

	s.metrics.RecordConnectionTransition(strings.ToLower(string(updated.Status)))
	s.logger.Info("connection request resolved",
		zap.String("request_id", updated.ID),
		zap.String("status", string(updated.Status)))
	s.notifyChange(updated.SenderID, updated.ReceiverID)
	return updated, nil
}

// Status returns the status label of the latest row between the pair,
// or the no-history sentinel when the pair never interacted.
func (s *ConnectionService) Status(ctx context.Context, a, b string) (string, error) {
	if a == b {
		return "", appErrors.ErrSelfConnection
	}

	latest, err := s.repo.FindLatestBetween(ctx, a, b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NoConnectionHistory, nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect connection history")
	}
	return string(latest.Status), nil
}

// Remove deletes an accepted connection, wiping every row between the
// pair in both directions. The decision is driven by the same
// latest-row rule as Request so the two operations can never disagree
// about the pair's current state.
func (s *ConnectionService) Remove(ctx context.Context, a, b string) (models.RemovalOutcome, error) {
	if a == b {
		return "", appErrors.ErrSelfConnection
	}

	mu := s.lockPair(a, b)
	defer mu.Unlock()

	latest, err := s.repo.FindLatestBetween(ctx, a, b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RemovalNoConnection, nil
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect connection history")
	}

	if latest.Status != models.ConnectionAccepted {
		return models.RemovalNotAcceptedYet, nil
	}

	deleted, err := s.repo.DeleteBetween(ctx, a, b)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove connection")
	}

	s.metrics.RecordConnectionTransition("removed")
	s.logger.Info("connection removed",
		zap.String("student_a", a),
		zap.String("student_b", b),
		zap.Int64("rows_deleted", deleted))
	s.notifyChange(a, b)
	return models.RemovalConnectionGone, nil
}

// ExistsAccepted reports whether the pair's latest row is ACCEPTED.
// The match engine uses this as its exclusion predicate.
func (s *ConnectionService) ExistsAccepted(ctx context.Context, a, b string) (bool, error) {
	accepted, err := s.repo.ExistsAccepted(ctx, a, b)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check accepted connection")
	}
	return accepted, nil
}

// ListForStudent returns the student's inbox: every request involving
// them, newest first, with counterpart profiles attached.
func (s *ConnectionService) ListForStudent(ctx context.Context, studentID string) ([]models.ConnectionWithCounterpart, error) {
	list, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list connections")
	}
	return list, nil
}

func (s *ConnectionService) notifyChange(a, b string) {
	if s.onChange == nil {
		return
	}
	s.onChange(ConnectionEvent{StudentA: a, StudentB: b})
}

func studentLookupError(err error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
}
