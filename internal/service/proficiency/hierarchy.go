package proficiency

import (
	"fmt"
	"math"
)

// weightTolerance absorbs float representation noise when checking that a
// subject's domain weights sum to 1.0.
const weightTolerance = 1e-9

// DomainNode is a weighted grouping of skills within a subject.
type DomainNode struct {
	ID     string
	Name   string
	Weight float64
	Skills []string
}

// SubjectNode is a top-level grouping of domains.
type SubjectNode struct {
	ID      string
	Name    string
	Domains []DomainNode
}

// Hierarchy is the static three-level proficiency tree: subject -> domain ->
// skill. It is configuration data, validated once at construction and
// read-only afterwards, so it is safe for concurrent use.
type Hierarchy struct {
	subjects []SubjectNode

	subjectByID map[string]*SubjectNode
	domainByID  map[string]*DomainNode
	// skillDomain maps every skill to its owning domain id; a skill belongs
	// to exactly one domain.
	skillDomain map[string]string
	// domainSubject maps every domain to its owning subject id.
	domainSubject map[string]string
}

// NewHierarchy builds and validates a hierarchy. It fails fast with
// ErrInvalidWeightConfiguration when a subject's domain weights do not sum
// to 1.0, and with a plain error on duplicate domain or skill ids.
func NewHierarchy(subjects []SubjectNode) (*Hierarchy, error) {
	h := &Hierarchy{
		subjects:      subjects,
		subjectByID:   make(map[string]*SubjectNode),
		domainByID:    make(map[string]*DomainNode),
		skillDomain:   make(map[string]string),
		domainSubject: make(map[string]string),
	}

	for si := range subjects {
		subject := &h.subjects[si]
		if _, exists := h.subjectByID[subject.ID]; exists {
			return nil, fmt.Errorf("duplicate subject %q", subject.ID)
		}
		h.subjectByID[subject.ID] = subject

		weightSum := 0.0
		for di := range subject.Domains {
			domain := &subject.Domains[di]
			if _, exists := h.domainByID[domain.ID]; exists {
				return nil, fmt.Errorf("duplicate domain %q", domain.ID)
			}
			h.domainByID[domain.ID] = domain
			h.domainSubject[domain.ID] = subject.ID
			weightSum += domain.Weight

			for _, skill := range domain.Skills {
				if owner, exists := h.skillDomain[skill]; exists {
					return nil, fmt.Errorf("skill %q assigned to both %q and %q", skill, owner, domain.ID)
				}
				h.skillDomain[skill] = domain.ID
			}
		}

		if math.Abs(weightSum-1.0) > weightTolerance {
			return nil, fmt.Errorf("%w: subject %q weights sum to %.4f",
				ErrInvalidWeightConfiguration, subject.ID, weightSum)
		}
	}

	return h, nil
}

// Subjects returns the subjects in declaration order.
func (h *Hierarchy) Subjects() []SubjectNode {
	return h.subjects
}

// Subject returns the subject with the given id.
func (h *Hierarchy) Subject(id string) (*SubjectNode, bool) {
	s, ok := h.subjectByID[id]
	return s, ok
}

// Domain returns the domain with the given id.
func (h *Hierarchy) Domain(id string) (*DomainNode, bool) {
	d, ok := h.domainByID[id]
	return d, ok
}

// DomainOfSkill returns the id of the domain owning the skill.
func (h *Hierarchy) DomainOfSkill(skill string) (string, bool) {
	d, ok := h.skillDomain[skill]
	return d, ok
}

// SubjectOfDomain returns the id of the subject owning the domain.
func (h *Hierarchy) SubjectOfDomain(domainID string) (string, bool) {
	s, ok := h.domainSubject[domainID]
	return s, ok
}

// HasSkill reports whether the skill exists anywhere in the tree.
func (h *Hierarchy) HasSkill(skill string) bool {
	_, ok := h.skillDomain[skill]
	return ok
}

// ValidScopeTarget reports whether id names an existing subject, domain or
// skill for the given scope type ("subject", "domain", "skill").
func (h *Hierarchy) ValidScopeTarget(scopeType, id string) bool {
	switch scopeType {
	case "subject":
		_, ok := h.subjectByID[id]
		return ok
	case "domain":
		_, ok := h.domainByID[id]
		return ok
	case "skill":
		return h.HasSkill(id)
	}
	return false
}

// DefaultHierarchy returns the digital SAT tree: two subjects, four domains
// each, skills matching the College Board question bank skill codes.
// Weights reflect each domain's share of the section.
func DefaultHierarchy() (*Hierarchy, error) {
	return NewHierarchy([]SubjectNode{
		{
			ID:   "math",
			Name: "Math",
			Domains: []DomainNode{
				{
					ID: "algebra", Name: "Algebra", Weight: 0.35,
					Skills: []string{
						"linear-equations-one-var",
						"linear-functions",
						"linear-equations-two-var",
						"systems-linear-equations",
						"linear-inequalities",
					},
				},
				{
					ID: "advanced-math", Name: "Advanced Math", Weight: 0.35,
					Skills: []string{
						"equivalent-expressions",
						"nonlinear-equations-systems",
						"nonlinear-functions",
					},
				},
				{
					ID: "problem-solving", Name: "Problem-Solving and Data Analysis", Weight: 0.15,
					Skills: []string{
						"ratio-rate-proportion",
						"percentages",
						"one-var-data",
						"two-var-data",
						"probability",
						"sample-statistics",
						"data-inferences",
					},
				},
				{
					ID: "geometry", Name: "Geometry and Trigonometry", Weight: 0.15,
					Skills: []string{
						"area-volume",
						"lines-angles-triangles",
						"right-triangles-trigonometry",
						"circles",
					},
				},
			},
		},
		{
			ID:   "english",
			Name: "Reading and Writing",
			Domains: []DomainNode{
				{
					ID: "information-ideas", Name: "Information and Ideas", Weight: 0.26,
					Skills: []string{
						"central-ideas-details",
						"command-of-evidence",
						"inferences",
					},
				},
				{
					ID: "craft-structure", Name: "Craft and Structure", Weight: 0.28,
					Skills: []string{
						"words-in-context",
						"text-structure-purpose",
						"cross-text-connections",
					},
				},
				{
					ID: "expression-ideas", Name: "Expression of Ideas", Weight: 0.20,
					Skills: []string{
						"rhetorical-synthesis",
						"transitions",
					},
				},
				{
					ID: "standard-english-conventions", Name: "Standard English Conventions", Weight: 0.26,
					Skills: []string{
						"boundaries",
						"form-structure-sense",
					},
				},
			},
		},
	})
}
