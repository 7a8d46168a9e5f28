package match_test

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/match"
)

func f64(v float64) *float64 { return &v }

func telAvivJob() *domain.Job {
	return &domain.Job{
		City:          "Tel Aviv",
		ChildrenCount: 2,
		Requirements:  domain.Requirements{FirstAid: true},
		BudgetMin:     f64(40),
		BudgetMax:     f64(60),
	}
}

func candidate(id string) *domain.Candidate {
	return &domain.Candidate{
		ID:           id,
		City:         "Tel Aviv",
		AvailableNow: true,
		MaxChildren:  3,
		HasFirstAid:  true,
		RateMin:      f64(40),
		RateMax:      f64(60),
	}
}

func TestFilter_CapacityAndCapabilities(t *testing.T) {
	f1 := candidate("f1")
	f1.MaxChildren = 3
	f1.RateMin, f1.RateMax = f64(30), f64(50)

	f2 := candidate("f2")
	f2.MaxChildren = 1 // below requested children count

	f3 := candidate("f3")
	f3.HasFirstAid = false

	got := match.Filter(telAvivJob(), []*domain.Candidate{f1, f2, f3}, 0)
	want := []string{"f1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestEligible_MonotonicInCapacitySlack(t *testing.T) {
	// A candidate eligible at children_count=n stays eligible for any
	// smaller count.
	c := candidate("f1")
	c.MaxChildren = 2

	job := telAvivJob()
	for n := 2; n >= 1; n-- {
		job.ChildrenCount = n
		if !match.Eligible(job, c) {
			t.Errorf("children_count=%d: candidate became ineligible", n)
		}
	}
}

func TestEligible_UnsetBoundsArePermissive(t *testing.T) {
	job := telAvivJob()

	unbounded := candidate("f1")
	unbounded.RateMin, unbounded.RateMax = nil, nil
	if !match.Eligible(job, unbounded) {
		t.Error("candidate with unset rate bounds rejected")
	}

	openJob := telAvivJob()
	openJob.BudgetMin, openJob.BudgetMax = nil, nil
	pricey := candidate("f2")
	pricey.RateMin, pricey.RateMax = f64(500), f64(900)
	if !match.Eligible(openJob, pricey) {
		t.Error("job with unset budget rejected a candidate rate")
	}
}

func TestEligible_BudgetOverlapEdges(t *testing.T) {
	job := telAvivJob() // budget 40-60

	touching := candidate("f1")
	touching.RateMin, touching.RateMax = f64(60), f64(90)
	if !match.Eligible(job, touching) {
		t.Error("interval touching at a single point should overlap")
	}

	below := candidate("f2")
	below.RateMin, below.RateMax = f64(10), f64(39)
	if match.Eligible(job, below) {
		t.Error("rate_max below budget_min should be rejected")
	}

	above := candidate("f3")
	above.RateMin, above.RateMax = f64(61), f64(90)
	if match.Eligible(job, above) {
		t.Error("rate_min above budget_max should be rejected")
	}
}

func TestEligible_LanguageIntersection(t *testing.T) {
	job := telAvivJob()
	job.Languages = []string{"he", "en"}

	speaks := candidate("f1")
	speaks.Languages = []string{"ru", "en"}
	if !match.Eligible(job, speaks) {
		t.Error("shared language rejected")
	}

	silent := candidate("f2")
	silent.Languages = []string{"fr"}
	if match.Eligible(job, silent) {
		t.Error("no shared language accepted")
	}

	job.Languages = nil
	if !match.Eligible(job, silent) {
		t.Error("empty preference should impose no constraint")
	}
}

func TestFilter_CapIsDeterministic(t *testing.T) {
	var pool []*domain.Candidate
	// Insert out of order so the sort is observable.
	for i := 9; i >= 0; i-- {
		pool = append(pool, candidate(fmt.Sprintf("f%02d", i)))
	}

	got := match.Filter(telAvivJob(), pool, 3)
	want := []string{"f00", "f01", "f02"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter = %v, want lowest IDs %v", got, want)
	}
}

func TestFilter_EmptyPool(t *testing.T) {
	if got := match.Filter(telAvivJob(), nil, 0); len(got) != 0 {
		t.Errorf("Filter(empty pool) = %v, want empty", got)
	}
}
