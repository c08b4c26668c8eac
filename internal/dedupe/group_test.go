package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neetprep/dedupe/internal/model"
)

func TestGroup_ByPhone(t *testing.T) {
	rules := DefaultRules()

	records := []*model.ContactRecord{
		{ID: "1", Phone: "9876543210"},
		{ID: "2", Phone: "+91 98765 43210"},
		{ID: "3", Phone: "8123456789"},
		{ID: "4", Phone: "not-a-phone"},
		{ID: "5", Phone: ""},
		{ID: "6", Phone: "98765-43210"},
	}

	groups := Group(records, ByPhone, rules)
	require.Len(t, groups, 1, "singleton and unparseable buckets are dropped")

	g := groups[0]
	assert.Equal(t, "9876543210", g.Key)
	assert.Equal(t, ByPhone, g.Dimension)
	require.Len(t, g.Records, 3)
	assert.Equal(t, "1", g.Records[0].ID, "discovery order preserved")
	assert.Equal(t, "2", g.Records[1].ID)
	assert.Equal(t, "6", g.Records[2].ID)
}

func TestGroup_ByEmail(t *testing.T) {
	rules := DefaultRules()

	records := []*model.ContactRecord{
		{ID: "1", Email: "Ravi@Gmail.com"},
		{ID: "2", Email: "ravi@gmail.com "},
		{ID: "3", Email: "other@gmail.com"},
	}

	groups := Group(records, ByEmail, rules)
	require.Len(t, groups, 1)
	assert.Equal(t, "ravi@gmail.com", groups[0].Key)
	assert.Len(t, groups[0].Records, 2)
}

func TestGroup_EveryMemberMatchesGroupKey(t *testing.T) {
	rules := DefaultRules()

	records := []*model.ContactRecord{
		{ID: "1", Phone: "9876543210"},
		{ID: "2", Phone: "9876543210"},
		{ID: "3", Phone: "8123456789"},
		{ID: "4", Phone: "+918123456789"},
		{ID: "5", Phone: "7000000000"},
	}

	groups := Group(records, ByPhone, rules)
	require.Len(t, groups, 2)

	seen := map[string]int{}
	for _, g := range groups {
		for _, rec := range g.Records {
			key, ok := Key(rec, ByPhone, rules)
			require.True(t, ok)
			assert.Equal(t, g.Key, key, "member %s must normalize to the group key", rec.ID)
			seen[rec.ID]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "record %s must be in exactly one group", id)
	}
}

func TestGroup_DimensionsIndependent(t *testing.T) {
	rules := DefaultRules()

	// Same phone, different emails: duplicate on the phone axis only.
	records := []*model.ContactRecord{
		{ID: "1", Phone: "9876543210", Email: "a@gmail.com"},
		{ID: "2", Phone: "9876543210", Email: "b@gmail.com"},
	}

	assert.Len(t, Group(records, ByPhone, rules), 1)
	assert.Empty(t, Group(records, ByEmail, rules))
}

func TestGroup_GroupOrderIsFirstSeen(t *testing.T) {
	rules := DefaultRules()

	records := []*model.ContactRecord{
		{ID: "1", Phone: "9000000001"},
		{ID: "2", Phone: "9000000002"},
		{ID: "3", Phone: "9000000001"},
		{ID: "4", Phone: "9000000002"},
	}

	groups := Group(records, ByPhone, rules)
	require.Len(t, groups, 2)
	assert.Equal(t, "9000000001", groups[0].Key)
	assert.Equal(t, "9000000002", groups[1].Key)
}
