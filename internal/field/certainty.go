package field

// Certainty is the confidence that a field plays a given role.
// Levels are totally ordered and comparable with the usual operators.
type Certainty int

const (
	Impossible Certainty = iota
	Possible
	Likely
	Certain
)

func (c Certainty) String() string {
	switch c {
	case Impossible:
		return "impossible"
	case Possible:
		return "possible"
	case Likely:
		return "likely"
	case Certain:
		return "certain"
	default:
		return "unknown"
	}
}

// AtLeast reports whether c is c or above min.
func (c Certainty) AtLeast(min Certainty) bool {
	return c >= min
}
