package proficiency

import (
	"math"

	"github.com/yourusername/satprep-api/internal/domain/entity"
)

// Roll-up calculations over the static hierarchy. All functions are pure:
// they depend only on the hierarchy and the supplied score map, so the same
// map can be snapshotted before and after a scoring pass.
//
// Skills the user has never touched read as entity.DefaultSkillScore,
// matching the lazy-creation semantics of the skill store.

// SkillScore returns the user's score for one skill, defaulting when absent.
func SkillScore(scores map[string]int, skill string) int {
	if s, ok := scores[skill]; ok {
		return s
	}
	return entity.DefaultSkillScore
}

// DomainScore is the mean of the domain's skill scores as fractions of the
// maximum, rescaled to the 0..800 range. An empty domain scores 0.
func (h *Hierarchy) DomainScore(domainID string, scores map[string]int) int {
	domain, ok := h.domainByID[domainID]
	if !ok || len(domain.Skills) == 0 {
		return 0
	}

	sum := 0.0
	for _, skill := range domain.Skills {
		sum += float64(SkillScore(scores, skill)) / float64(entity.MaxSkillScore)
	}
	mean := sum / float64(len(domain.Skills))
	return int(math.Round(mean * float64(entity.MaxSkillScore)))
}

// SubjectScore is the weight-blended sum of the subject's domain scores.
// Weights sum to 1.0 (validated at construction), so the result stays on
// the 0..800 scale.
func (h *Hierarchy) SubjectScore(subjectID string, scores map[string]int) int {
	subject, ok := h.subjectByID[subjectID]
	if !ok {
		return 0
	}

	sum := 0.0
	for _, domain := range subject.Domains {
		sum += float64(h.DomainScore(domain.ID, scores)) * domain.Weight
	}
	return int(math.Round(sum))
}

// OverallScore is the arithmetic mean of all subject scores, keeping the
// overall result on the same 0..800 scale as each subject.
func (h *Hierarchy) OverallScore(scores map[string]int) int {
	if len(h.subjects) == 0 {
		return 0
	}

	sum := 0.0
	for _, subject := range h.subjects {
		sum += float64(h.SubjectScore(subject.ID, scores))
	}
	return int(math.Round(sum / float64(len(h.subjects))))
}

// Snapshot is a full roll-up of a score map.
type Snapshot struct {
	Skills   map[string]int `json:"skills"`
	Domains  map[string]int `json:"domains"`
	Subjects map[string]int `json:"subjects"`
	Overall  int            `json:"overall"`
}

// Snapshot computes every domain, subject and overall score for the map.
func (h *Hierarchy) Snapshot(scores map[string]int) Snapshot {
	snap := Snapshot{
		Skills:   make(map[string]int, len(scores)),
		Domains:  make(map[string]int, len(h.domainByID)),
		Subjects: make(map[string]int, len(h.subjectByID)),
	}
	for skill, score := range scores {
		snap.Skills[skill] = score
	}
	for _, subject := range h.subjects {
		for _, domain := range subject.Domains {
			snap.Domains[domain.ID] = h.DomainScore(domain.ID, scores)
		}
		snap.Subjects[subject.ID] = h.SubjectScore(subject.ID, scores)
	}
	snap.Overall = h.OverallScore(scores)
	return snap
}

// RollupChanges computes a PointChange for every ancestor (domain, subject,
// overall) of the touched skills, comparing the before and after score maps.
// Untouched branches of the tree are omitted.
func (h *Hierarchy) RollupChanges(before, after map[string]int, skillChanges map[string]PointChange) (domains, subjects map[string]PointChange, overall PointChange) {
	touchedDomains := make(map[string]bool)
	touchedSubjects := make(map[string]bool)
	for skill := range skillChanges {
		if domainID, ok := h.skillDomain[skill]; ok {
			touchedDomains[domainID] = true
			touchedSubjects[h.domainSubject[domainID]] = true
		}
	}

	domains = make(map[string]PointChange, len(touchedDomains))
	for domainID := range touchedDomains {
		b := h.DomainScore(domainID, before)
		a := h.DomainScore(domainID, after)
		domains[domainID] = PointChange{Before: b, After: a, Delta: a - b}
	}

	subjects = make(map[string]PointChange, len(touchedSubjects))
	for subjectID := range touchedSubjects {
		b := h.SubjectScore(subjectID, before)
		a := h.SubjectScore(subjectID, after)
		subjects[subjectID] = PointChange{Before: b, After: a, Delta: a - b}
	}

	ob := h.OverallScore(before)
	oa := h.OverallScore(after)
	overall = PointChange{Before: ob, After: oa, Delta: oa - ob}
	return domains, subjects, overall
}
