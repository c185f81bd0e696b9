// internal/domain/assign/selection.go
package assign

// ScoredMember pairs a solvent member with their computed score.
type ScoredMember struct {
	Member MemberSnapshot
	Score  Score
}

// SelectionPool returns the candidates the winner must be drawn from.
//
// If any member scored unlimited, the pool is exactly the unlimited members;
// finite scorers are excluded entirely, not merely outranked. Otherwise the
// pool is every member whose finite score equals the maximum, compared
// exactly on the decimal value so legitimate ties (both zero, say) survive.
func SelectionPool(candidates []ScoredMember) []ScoredMember {
	var pool []ScoredMember

	for _, c := range candidates {
		if c.Score.IsUnlimited() {
			pool = append(pool, c)
		}
	}
	if len(pool) > 0 {
		return pool
	}

	var best Score
	for i, c := range candidates {
		switch cmp := c.Score.Cmp(best); {
		case i == 0 || cmp > 0:
			best = c.Score
			pool = pool[:0]
			pool = append(pool, c)
		case cmp == 0:
			pool = append(pool, c)
		}
	}
	return pool
}
