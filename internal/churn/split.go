package churn

import (
	"math/rand"
	"sort"
)

// StratifiedSplit partitions row indices into train and test sets, sampling
// each class independently so the held-out split preserves class balance.
// Deterministic for a fixed seed.
func StratifiedSplit(y []bool, testFraction float64, seed int64) (train, test []int) {
	rng := rand.New(rand.NewSource(seed))

	var classes [2][]int
	for i, label := range y {
		if label {
			classes[1] = append(classes[1], i)
		} else {
			classes[0] = append(classes[0], i)
		}
	}

	for _, members := range classes {
		rng.Shuffle(len(members), func(a, b int) {
			members[a], members[b] = members[b], members[a]
		})
		nTest := int(float64(len(members))*testFraction + 0.5)
		if nTest >= len(members) && len(members) > 0 {
			nTest = len(members) - 1
		}
		test = append(test, members[:nTest]...)
		train = append(train, members[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}
