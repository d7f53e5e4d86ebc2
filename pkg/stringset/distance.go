package stringset

// EditDistance returns the cost of turning a into b.
//
// Deletions and substitutions cost 1. Insertions cost 1 as well, except in
// front of a (before any of a is consumed) and behind it (after all of a is
// consumed), where each inserted rune costs 1/(len(a)+len(b)). Differences
// confined to a leading or trailing region of b are therefore nearly free.
func EditDistance(a, b []rune) float64 {
	return levenshtein(len(a), len(b), func(i, j int) float64 {
		if a[i] == b[j] {
			return 0
		}
		return 1
	})
}

// ProfileDistance is EditDistance against a character-set profile: replacing
// query[i] at profile position j is free when the rune is in profile[j].
// For any entry covered by the profile the result is a lower bound of the
// entry's EditDistance.
func ProfileDistance(query []rune, profile Profile) float64 {
	return levenshtein(len(query), len(profile), func(i, j int) float64 {
		if profile[j].has(query[i]) {
			return 0
		}
		return 1
	})
}

// levenshtein runs the shared dynamic program; sub(i, j) is the cost of
// replacing a[i] with b[j]. Only two rows are kept.
func levenshtein(alen, blen int, sub func(i, j int) float64) float64 {
	if alen+blen == 0 {
		return 0
	}
	mincost := 1 / float64(alen+blen)

	prev := make([]float64, blen+1)
	curr := make([]float64, blen+1)
	for j := range prev {
		prev[j] = float64(j) * mincost
	}

	for i := 1; i <= alen; i++ {
		curr[0] = float64(i)
		insCost := 1.0
		if i == alen {
			insCost = mincost
		}
		for j := 1; j <= blen; j++ {
			repl := prev[j-1] + sub(i-1, j-1)
			ins := curr[j-1] + insCost
			del := prev[j] + 1
			curr[j] = min(repl, ins, del)
		}
		prev, curr = curr, prev
	}
	return prev[blen]
}
