package dedupe

import (
	"github.com/neetprep/dedupe/internal/model"
)

// Dimension is an identity axis contacts are grouped along. Phone groups and
// email groups are always built in independent passes, never combined.
type Dimension string

const (
	ByPhone Dimension = "phone"
	ByEmail Dimension = "email"
)

// DuplicateGroup is a set of two or more contacts sharing one normalized key
// along one dimension, in discovery order.
type DuplicateGroup struct {
	Key       string
	Dimension Dimension
	Records   []*model.ContactRecord
}

// Key derives the grouping key of a record under dim. ok is false when the
// record has no usable value on that axis and is excluded from the pass.
func Key(rec *model.ContactRecord, dim Dimension, rules Rules) (string, bool) {
	switch dim {
	case ByPhone:
		return NormalizePhone(rec.Phone, rules.CountryPrefix, rules.PhoneStrictness)
	case ByEmail:
		return NormalizeEmail(rec.Email)
	}
	return "", false
}

// Group partitions records by normalized key along dim. Groups keep the order
// records were discovered in, group order is first-seen key order, and
// singleton buckets are dropped (a group of one is not a duplicate).
func Group(records []*model.ContactRecord, dim Dimension, rules Rules) []DuplicateGroup {
	buckets := make(map[string][]*model.ContactRecord)
	var order []string

	for _, rec := range records {
		key, ok := Key(rec, dim, rules)
		if !ok {
			continue
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], rec)
	}

	var groups []DuplicateGroup
	for _, key := range order {
		if len(buckets[key]) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Key:       key,
			Dimension: dim,
			Records:   buckets[key],
		})
	}
	return groups
}
