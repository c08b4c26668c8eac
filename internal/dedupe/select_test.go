package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neetprep/dedupe/internal/model"
)

func oldUncontacted(id string, createdDaysAgo int) *model.ContactRecord {
	return &model.ContactRecord{
		ID:        id,
		CreatedAt: testNow.Add(-time.Duration(createdDaysAgo) * 24 * time.Hour),
	}
}

func TestWaterfall_PriorityStageWins(t *testing.T) {
	sel := NewWaterfallSelector(DefaultRules())

	// Scenario: customer with a weaker profile still beats a richer record
	// without a priority stage.
	customer := &model.ContactRecord{
		ID:             "A",
		LifecycleStage: "customer",
		CreatedAt:      testNow.Add(-100 * 24 * time.Hour),
		FirstName:      "Ravi", LastName: "Kumar",
		Email: "ravi@gmail.com", Phone: "9876543210",
		City: "Pune", State: "MH",
	}
	richer := &model.ContactRecord{
		ID:        "B",
		CreatedAt: testNow.Add(-1 * time.Hour),
		OwnerID:   "owner-1",
		FirstName: "Ravi", LastName: "Kumar",
		Email: "ravi@gmail.com", Phone: "9876543210",
		Company: "Acme", JobTitle: "Teacher", Website: "acme.in",
		Industry: "Education", City: "Pune", State: "MH",
		AnalyticsLast: testNow.Add(-time.Hour),
	}

	assert.Equal(t, "A", sel.Select([]*model.ContactRecord{richer, customer}, testNow).ID)
}

func TestWaterfall_PriorityTieBreaksByQualityThenRecency(t *testing.T) {
	sel := NewWaterfallSelector(DefaultRules())

	lowQuality := &model.ContactRecord{
		ID: "A", LifecycleStage: "mql",
		CreatedAt: testNow.Add(-50 * 24 * time.Hour),
	}
	highQuality := &model.ContactRecord{
		ID: "B", LifecycleStage: "sql",
		CreatedAt: testNow.Add(-50 * 24 * time.Hour),
		FirstName: "Ravi", LastName: "Kumar", Email: "r@g.com", Phone: "9876543210",
	}

	assert.Equal(t, "B", sel.Select([]*model.ContactRecord{lowQuality, highQuality}, testNow).ID)

	// Equal quality: more recent activity wins.
	a := &model.ContactRecord{
		ID: "C", LifecycleStage: "mql",
		CreatedAt:     testNow.Add(-50 * 24 * time.Hour),
		LastContacted: testNow.Add(-10 * 24 * time.Hour),
	}
	b := &model.ContactRecord{
		ID: "D", LifecycleStage: "mql",
		CreatedAt:     testNow.Add(-50 * 24 * time.Hour),
		LastContacted: testNow.Add(-2 * 24 * time.Hour),
	}
	assert.Equal(t, "D", sel.Select([]*model.ContactRecord{a, b}, testNow).ID)
}

func TestWaterfall_OldUncontactedPicksOldest(t *testing.T) {
	sel := NewWaterfallSelector(DefaultRules())

	group := []*model.ContactRecord{
		oldUncontacted("A", 90),
		oldUncontacted("B", 200),
		oldUncontacted("C", 45),
	}
	assert.Equal(t, "B", sel.Select(group, testNow).ID, "longest-standing record of truth wins")
}

func TestWaterfall_RecentOwnedBeatsRecentUnowned(t *testing.T) {
	sel := NewWaterfallSelector(DefaultRules())

	owned := &model.ContactRecord{
		ID: "A", OwnerID: "owner-1",
		CreatedAt: testNow.Add(-2 * time.Hour),
	}
	unowned := &model.ContactRecord{
		ID:        "B",
		CreatedAt: testNow.Add(-1 * time.Hour),
	}

	assert.Equal(t, "A", sel.Select([]*model.ContactRecord{unowned, owned}, testNow).ID)
}

func TestWaterfall_UnownedPicksNewest(t *testing.T) {
	rules := DefaultRules()
	sel := NewWaterfallSelector(rules)

	// Both new, neither owned: rules 1-3 yield nothing, rule 4 picks the
	// latest creation.
	a := &model.ContactRecord{ID: "A", CreatedAt: testNow.Add(-3 * time.Hour)}
	b := &model.ContactRecord{ID: "B", CreatedAt: testNow.Add(-1 * time.Hour)}

	assert.Equal(t, "B", sel.Select([]*model.ContactRecord{a, b}, testNow).ID)
}

func TestWaterfall_FallbackRecencyThenQuality(t *testing.T) {
	sel := NewWaterfallSelector(DefaultRules())

	// Both new, both owned, recently contacted: lands in rule 3's tie-break.
	a := &model.ContactRecord{
		ID: "A", OwnerID: "o1",
		CreatedAt:     testNow.Add(-2 * time.Hour),
		LastContacted: testNow.Add(-90 * time.Minute),
	}
	b := &model.ContactRecord{
		ID: "B", OwnerID: "o2",
		CreatedAt:     testNow.Add(-3 * time.Hour),
		LastContacted: testNow.Add(-10 * time.Minute),
	}

	assert.Equal(t, "B", sel.Select([]*model.ContactRecord{a, b}, testNow).ID)
}

func TestWaterfall_TotalAndDeterministic(t *testing.T) {
	sel := NewWaterfallSelector(DefaultRules())

	group := []*model.ContactRecord{
		oldUncontacted("A", 90),
		{ID: "B", CreatedAt: testNow.Add(-time.Hour), OwnerID: "o1"},
		{ID: "C", LifecycleStage: "opportunity", CreatedAt: testNow.Add(-10 * 24 * time.Hour)},
	}

	first := sel.Select(group, testNow)
	require.NotNil(t, first)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.ID, sel.Select(group, testNow).ID)
	}
}

func TestWaterfall_ResidualTieKeepsInputOrder(t *testing.T) {
	sel := NewWaterfallSelector(DefaultRules())

	// Identical twins: selection must be stable for the same ordering.
	a := oldUncontacted("A", 90)
	b := oldUncontacted("B", 90)

	assert.Equal(t, "A", sel.Select([]*model.ContactRecord{a, b}, testNow).ID)
	assert.Equal(t, "B", sel.Select([]*model.ContactRecord{b, a}, testNow).ID)
}

func TestRecencySelector(t *testing.T) {
	sel := NewRecencySelector(DefaultRules())

	a := &model.ContactRecord{
		ID:            "A",
		CreatedAt:     testNow.Add(-100 * 24 * time.Hour),
		LastContacted: testNow.Add(-1 * 24 * time.Hour),
	}
	b := &model.ContactRecord{
		ID:        "B",
		CreatedAt: testNow.Add(-2 * 24 * time.Hour),
	}

	assert.Equal(t, "A", sel.Select([]*model.ContactRecord{b, a}, testNow).ID,
		"activity recency outranks creation recency")
	assert.Nil(t, sel.Select(nil, testNow))
}
