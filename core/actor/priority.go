package actor

// Priority orders actors on a prioritized pool. The zero value is
// PriorityDefault.
type Priority int

const (
	PriorityDefault Priority = iota
	PriorityMax
	PriorityHigh
	PriorityMedium
	PriorityLow
	PriorityVeryLow
)

// Rank is the scheduling weight of p; lower ranks run first.
func (p Priority) Rank() int {
	switch p {
	case PriorityMax:
		return 0
	case PriorityHigh:
		return 100
	case PriorityMedium:
		return 200
	case PriorityLow:
		return 300
	case PriorityVeryLow:
		return 400
	default:
		return 500
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityMax:
		return "max"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	case PriorityVeryLow:
		return "very_low"
	default:
		return "default"
	}
}

// ParsePriority maps a priority name to its level. Unknown names yield
// PriorityDefault.
func ParsePriority(s string) Priority {
	for _, p := range []Priority{PriorityMax, PriorityHigh, PriorityMedium, PriorityLow, PriorityVeryLow} {
		if p.String() == s {
			return p
		}
	}
	return PriorityDefault
}
