package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/satprep-api/internal/domain/repository"
	"github.com/yourusername/satprep-api/internal/service/proficiency"
)

// progressCacheTTL keeps the snapshot briefly cached; completion invalidates.
const progressCacheTTL = 5 * time.Minute

// ProgressService produces proficiency roll-ups for the progress UI.
type ProgressService struct {
	proficiencyRepo repository.ProficiencyRepository
	cacheRepo       repository.CacheRepository
	hierarchy       *proficiency.Hierarchy
}

// NewProgressService creates a new progress service.
func NewProgressService(
	proficiencyRepo repository.ProficiencyRepository,
	cacheRepo repository.CacheRepository,
	hierarchy *proficiency.Hierarchy,
) *ProgressService {
	return &ProgressService{
		proficiencyRepo: proficiencyRepo,
		cacheRepo:       cacheRepo,
		hierarchy:       hierarchy,
	}
}

// GetProgress returns the user's full proficiency snapshot: every skill in
// the hierarchy (untouched skills read as the default score), plus domain,
// subject and overall roll-ups.
func (s *ProgressService) GetProgress(userID uint) (*proficiency.Snapshot, error) {
	key := progressCacheKey(userID)

	var cached proficiency.Snapshot
	if err := s.cacheRepo.GetJSON(key, &cached); err == nil {
		return &cached, nil
	}

	scores, err := s.proficiencyRepo.GetSkillScores(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skill scores: %w", err)
	}

	// Materialize the lazy default for every skill the user hasn't touched,
	// so the snapshot always covers the whole tree.
	for _, subject := range s.hierarchy.Subjects() {
		for _, domain := range subject.Domains {
			for _, skill := range domain.Skills {
				if _, ok := scores[skill]; !ok {
					scores[skill] = proficiency.SkillScore(scores, skill)
				}
			}
		}
	}

	snap := s.hierarchy.Snapshot(scores)
	if cacheErr := s.cacheRepo.SetJSON(key, snap, progressCacheTTL); cacheErr != nil {
		log.Printf("[ProgressService] WARNING: failed to cache progress for user #%d: %v", userID, cacheErr)
	}
	return &snap, nil
}

// InvalidateProgress drops the cached snapshot after a scoring pass.
func (s *ProgressService) InvalidateProgress(userID uint) {
	if err := s.cacheRepo.Delete(progressCacheKey(userID)); err != nil {
		log.Printf("[ProgressService] WARNING: failed to invalidate progress cache for user #%d: %v", userID, err)
	}
}

func progressCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d:progress", userID)
}
