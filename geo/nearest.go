package geo

// Candidate is a labeled coordinate considered by a proximity query.
type Candidate struct {
	ID       string
	Position Position
}

// Match is the result of a proximity query.
type Match struct {
	ID         string
	Position   Position
	DistanceKM float64
}

// Resolver answers nearest-point queries over a candidate set. Callers depend
// on this interface so a spatial index can replace the linear scan without
// touching call sites.
type Resolver interface {
	Nearest(from Position, candidates []Candidate) (Match, bool)
}

// distance comparisons tighter than this are treated as ties
const tieToleranceKM = 1e-9

// LinearResolver computes the haversine distance to every candidate and keeps
// the minimum. O(n) per query, which is fine for the stop counts in scope.
type LinearResolver struct{}

// Nearest returns the nearest candidate and its distance. The second return
// is false when candidates is empty. On an exact distance tie the candidate
// that appears first in the input order wins.
func (LinearResolver) Nearest(from Position, candidates []Candidate) (Match, bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}
	best := Match{ID: candidates[0].ID, Position: candidates[0].Position, DistanceKM: HaversineKM(from, candidates[0].Position)}
	for _, c := range candidates[1:] {
		d := HaversineKM(from, c.Position)
		if d < best.DistanceKM-tieToleranceKM {
			best = Match{ID: c.ID, Position: c.Position, DistanceKM: d}
		}
	}
	return best, true
}
