// Package match holds the pure candidate-eligibility logic. It performs
// no I/O; sourcing the candidate pool and persisting the fan-out are the
// caller's concern.
package match

import (
	"sort"

	"github.com/carematch/carematch/internal/domain"
)

// DefaultBatchLimit caps how many eligible candidates are notified per
// fan-out.
const DefaultBatchLimit = 30

// Eligible reports whether a candidate satisfies every hard constraint
// of the job. The pool is assumed to be city- and availability-scoped
// already.
func Eligible(job *domain.Job, c *domain.Candidate) bool {
	// Capacity: no fewer places than children requested.
	if c.MaxChildren < job.ChildrenCount {
		return false
	}

	// Required capabilities; an absent requirement imposes nothing.
	req := job.Requirements
	if req.FirstAid && !c.HasFirstAid {
		return false
	}
	if req.NewbornCare && !c.HasNewbornCare {
		return false
	}
	if req.SpecialNeeds && !c.HasSpecialNeeds {
		return false
	}

	// Budget/rate intervals must overlap; an unset bound is permissive.
	if job.BudgetMin != nil && c.RateMax != nil && *c.RateMax < *job.BudgetMin {
		return false
	}
	if job.BudgetMax != nil && c.RateMin != nil && *c.RateMin > *job.BudgetMax {
		return false
	}

	// Language: at least one shared language when the job states a preference.
	if len(job.Languages) > 0 && !sharesLanguage(job.Languages, c.Languages) {
		return false
	}

	return true
}

func sharesLanguage(wanted, spoken []string) bool {
	for _, w := range wanted {
		for _, s := range spoken {
			if w == s {
				return true
			}
		}
	}
	return false
}

// Filter returns the IDs of eligible candidates, sorted by ID and capped
// at limit so the batch is deterministic. limit <= 0 means
// DefaultBatchLimit.
func Filter(job *domain.Job, pool []*domain.Candidate, limit int) []string {
	if limit <= 0 {
		limit = DefaultBatchLimit
	}

	ids := make([]string, 0, len(pool))
	for _, c := range pool {
		if Eligible(job, c) {
			ids = append(ids, c.ID)
		}
	}

	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}
