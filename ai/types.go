package ai

// Category keys of the fixed classification schema. CategoryOne is the
// personal category, CategoryTwo the work category; the work probability
// drives the accessibility decision.
const (
	CategoryOne = "category_one"
	CategoryTwo = "category_two"
)

// CategoryKeys lists the category names a well-formed classifier response
// must contain.
var CategoryKeys = []string{CategoryOne, CategoryTwo}

// Probabilities maps category names to probabilities in [0,1].
type Probabilities map[string]float64

// Complete reports whether the probabilities contain every expected
// category key with a value inside [0,1].
func (p Probabilities) Complete() bool {
	for _, key := range CategoryKeys {
		v, ok := p[key]
		if !ok || v < 0 || v > 1 {
			return false
		}
	}
	return true
}
