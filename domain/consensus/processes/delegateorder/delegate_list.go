package delegateorder

import (
	"crypto/sha256"
	"strconv"
)

// swapsPerSeed is the number of seed bytes consumed before the seed is
// rehashed and one position is skipped
const swapsPerSeed = 4

// GenerateDelegateList returns the forging order of round: keys shuffled
// by a seed derived from the round number. Position 0 forges first. The
// input slice is not modified.
func GenerateDelegateList(round uint64, keys []string) []string {
	list := make([]string, len(keys))
	copy(list, keys)

	delegateCount := len(list)
	if delegateCount == 0 {
		return list
	}

	seed := sha256.Sum256([]byte(strconv.FormatUint(round, 10)))
	for i := 0; i < delegateCount; i++ {
		for x := 0; x < swapsPerSeed && i < delegateCount; i, x = i+1, x+1 {
			newIndex := int(seed[x]) % delegateCount
			list[newIndex], list[i] = list[i], list[newIndex]
		}
		seed = sha256.Sum256(seed[:])
	}
	return list
}
