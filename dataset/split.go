package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// TrainTestSplit partitions d into a training and a test set, preserving
// the label proportions in both.
//
// The test set holds ceil(testSize * n) samples. Each class contributes
// its proportional share, rounded with the largest remainder method so the
// total is exact. Which samples go where, and their order, is decided by a
// generator seeded with seed.
func TrainTestSplit(d Dataset, testSize float64, seed int64) (train, test Dataset, err error) {
	if !(testSize > 0 && testSize < 1) {
		return train, test, fmt.Errorf("%w: test size must be in (0, 1), got %v", ErrInvalidParameter, testSize)
	}

	n := d.Len()
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest

	if nTest == 0 || nTrain == 0 {
		return train, test, fmt.Errorf("%w: test size %v leaves an empty split of %d samples", ErrInvalidParameter, testSize, n)
	}

	groups := IndicesByClass(d.Y)
	classes := Classes(d.Y)

	for _, class := range classes {
		if len(groups[class]) < 2 {
			return train, test, fmt.Errorf("%w: class %d has fewer than 2 members", ErrInvalidParameter, class)
		}
	}

	if nTest < len(classes) || nTrain < len(classes) {
		return train, test, fmt.Errorf("%w: splits of %d and %d samples can't hold %d classes",
			ErrInvalidParameter, nTrain, nTest, len(classes))
	}

	counts := apportion(classes, groups, nTest, n)

	rng := rand.New(rand.NewSource(seed))

	trainIdx := make([]int, 0, nTrain)
	testIdx := make([]int, 0, nTest)

	for _, class := range classes {
		idx := append([]int(nil), groups[class]...)
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		testIdx = append(testIdx, idx[:counts[class]]...)
		trainIdx = append(trainIdx, idx[counts[class]:]...)
	}

	rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
	rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })

	return d.Subset(trainIdx), d.Subset(testIdx), nil
}

// apportion distributes total samples over the classes proportionally to
// their size, using the largest remainder method. Ties go to the class with
// the smaller label.
func apportion(classes []int, groups map[int][]int, total, n int) map[int]int {
	type share struct {
		class     int
		remainder float64
	}

	counts := make(map[int]int, len(classes))
	shares := make([]share, 0, len(classes))
	assigned := 0

	for _, class := range classes {
		exact := float64(total) * float64(len(groups[class])) / float64(n)
		whole := math.Floor(exact)

		counts[class] = int(whole)
		assigned += int(whole)
		shares = append(shares, share{class: class, remainder: exact - whole})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder > shares[j].remainder
	})

	for i := 0; assigned < total; i++ {
		counts[shares[i%len(shares)].class]++
		assigned++
	}

	return counts
}
