package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ankithlg/PeerBridge/internal/dto"
	"github.com/ankithlg/PeerBridge/internal/models"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
)

// Scoring weights. A candidate must clear minMatchScore to appear in
// results at all.
const (
	baseScore         = 40.0
	advancedBonus     = 15.0
	intermediateBonus = 10.0
	beginnerBonus     = 5.0
	modeBonus         = 20.0
	availabilityBonus = 15.0
	bioBonus          = 5.0
	maxScore          = 100.0
	minMatchScore     = 50.0

	defaultPageSize = 10
)

type matchSkillCatalog interface {
	FindTeachersBySkill(ctx context.Context, skillName string) ([]models.TeachSkillCandidate, error)
}

type acceptedConnectionChecker interface {
	ExistsAccepted(ctx context.Context, a, b string) (bool, error)
}

type matchCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// MatchService ranks teaching offers against a learner's query. Scoring
// is a pure function of the candidate and the query, so identical
// requests always produce identical pages; that is what makes the Redis
// layer safe to put in front of it.
type MatchService struct {
	skills      matchSkillCatalog
	connections acceptedConnectionChecker
	cache       matchCache
	validator   *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger

	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewMatchService constructs the match engine. cache and metrics may be
// nil when disabled.
func NewMatchService(skills matchSkillCatalog, connections acceptedConnectionChecker, cache matchCache, cacheEnabled bool, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *MatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchService{
		skills:       skills,
		connections:  connections,
		cache:        cache,
		validator:    validator.New(),
		metrics:      metrics,
		logger:       logger,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
	}
}

// FindMatches scores every active teaching offer for the requested
// skill and returns one page of the ranked result set.
func (s *MatchService) FindMatches(ctx context.Context, requesterID string, query dto.MatchQuery) (*dto.MatchPage, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "skill_name is required")
	}

	page, size := normalizePaging(query.Page, query.Size)
	query.Page, query.Size = page, size

	started := time.Now()

	cacheKey := matchCacheKey(requesterID, query)
	if s.cacheEnabled {
		var cached dto.MatchPage
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("match cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	candidates, err := s.skills.FindTeachersBySkill(ctx, query.SkillName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enumerate teaching offers")
	}

	ranked := make([]dto.StudentMatch, 0, len(candidates))
	for _, c := range candidates {
		if c.Teacher.ID == requesterID {
			continue
		}

		connected, err := s.connections.ExistsAccepted(ctx, requesterID, c.Teacher.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing connections")
		}
		if connected {
			continue
		}

		score := scoreCandidate(c, query)
		if score < minMatchScore {
			continue
		}

		ranked = append(ranked, dto.StudentMatch{
			ID:              c.Teacher.ID,
			Name:            c.Teacher.Name,
			Email:           c.Teacher.Email,
			Bio:             c.Teacher.Bio,
			PreferredMode:   c.Teacher.PreferredMode,
			AvailableTime:   c.Teacher.AvailableTime,
			SkillName:       c.SkillName,
			ExperienceLevel: string(c.ExperienceLevel),
			MatchScore:      score,
		})
	}

	// Candidates arrive ordered by offer id, so a stable sort keeps
	// equal scores deterministic.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MatchScore > ranked[j].MatchScore
	})

	result := paginate(ranked, page, size)

	if s.cacheEnabled {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("match cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	s.metrics.ObserveMatchQuery(time.Since(started), len(ranked))
	s.logger.Debug("match query served",
		zap.String("requester_id", requesterID),
		zap.String("skill", query.SkillName),
		zap.Int("total", result.TotalElements),
		zap.Int("page", page))
	return result, nil
}

// InvalidateFor drops every cached page the student requested. Called
// when their connection state changes.
func (s *MatchService) InvalidateFor(ctx context.Context, studentID string) error {
	if !s.cacheEnabled {
		return nil
	}
	return s.cache.DeleteByPattern(ctx, fmt.Sprintf("match:%s:*", studentID))
}

func scoreCandidate(c models.TeachSkillCandidate, query dto.MatchQuery) float64 {
	score := baseScore

	switch c.ExperienceLevel {
	case models.ExperienceAdvanced:
		score += advancedBonus
	case models.ExperienceIntermediate:
		score += intermediateBonus
	case models.ExperienceBeginner:
		score += beginnerBonus
	}

	if modeCompatible(query.PreferredMode, c.Teacher.PreferredMode) {
		score += modeBonus
	}

	wanted := strings.ToLower(query.AvailableTime)
	offered := strings.ToLower(c.Teacher.AvailableTime)
	if wanted != "" && offered != "" && strings.Contains(offered, wanted) {
		score += availabilityBonus
	}

	if strings.Contains(strings.ToLower(c.Teacher.Bio), strings.ToLower(query.SkillName)) {
		score += bioBonus
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// modeCompatible treats "both" on either side as a wildcard and
// otherwise accepts substring containment in either direction.
func modeCompatible(requested, offered string) bool {
	requested = strings.ToLower(requested)
	offered = strings.ToLower(offered)
	if requested == "" || offered == "" {
		return false
	}
	if requested == "both" || offered == "both" {
		return true
	}
	return strings.Contains(offered, requested) || strings.Contains(requested, offered)
}

func normalizePaging(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = defaultPageSize
	}
	return page, size
}

func paginate(ranked []dto.StudentMatch, page, size int) *dto.MatchPage {
	total := len(ranked)
	totalPages := (total + size - 1) / size

	from := page * size
	if from > total {
		from = total
	}
	to := from + size
	if to > total {
		to = total
	}

	return &dto.MatchPage{
		Matches:       ranked[from:to],
		TotalPages:    totalPages,
		TotalElements: total,
		CurrentPage:   page,
	}
}

func matchCacheKey(requesterID string, query dto.MatchQuery) string {
	return fmt.Sprintf("match:%s:%s:%s:%s:%d:%d",
		requesterID,
		strings.ToLower(strings.TrimSpace(query.SkillName)),
		strings.ToLower(strings.TrimSpace(query.PreferredMode)),
		strings.ToLower(strings.TrimSpace(query.AvailableTime)),
		query.Page,
		query.Size,
	)
}
