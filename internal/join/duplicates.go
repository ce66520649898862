package join

import (
	"deedjoin/internal/tally"
	"deedjoin/internal/types"
)

// KeyCount is a key and the number of parcels carrying it.
type KeyCount struct {
	Key   string `yaml:"key"`
	Count int    `yaml:"count"`
}

// DuplicateKeys lists the keys held by more than one parcel of t, in key
// order.
func DuplicateKeys(t *types.Table) []KeyCount {
	keys := tally.New()
	for _, p := range t.Parcels {
		keys.Add(p.Key)
	}

	var dups []KeyCount
	keys.Each(func(key string, n int) bool {
		if n > 1 {
			dups = append(dups, KeyCount{Key: key, Count: n})
		}
		return true
	})
	return dups
}

// Partition splits t by key multiplicity in one pass and returns either the
// parcels whose key occurs once or, when wantDuplicates is set, every parcel
// whose key occurs more than once. Duplicates are ordered by when their key
// was found to repeat: the first-seen instance, then each later one.
//
// The result holds copies; t is not modified.
func Partition(t *types.Table, wantDuplicates bool) *types.Table {
	seen := tally.New()
	first := make(map[string]int)
	moved := make(map[int]bool)

	var unique, dups []*types.Parcel
	for _, p := range t.Parcels {
		if seen.Add(p.Key) > 1 {
			if i, ok := first[p.Key]; ok {
				dups = append(dups, unique[i])
				moved[i] = true
				delete(first, p.Key)
			}
			dups = append(dups, p)
			continue
		}
		first[p.Key] = len(unique)
		unique = append(unique, p)
	}

	out := &types.Table{Fields: t.Fields.Clone(), Comments: t.Comments.Clone()}
	if wantDuplicates {
		for _, p := range dups {
			out.Add(p.Clone())
		}
		return out
	}
	for i, p := range unique {
		if !moved[i] {
			out.Add(p.Clone())
		}
	}
	return out
}
