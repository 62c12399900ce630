package run

// SectionState is the lifecycle of one section inside a run.
type SectionState int

const (
	Pending SectionState = iota
	Generating
	Scoring
	Selected
	Escalating
	Finalized
)

func (s SectionState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Generating:
		return "generating"
	case Scoring:
		return "scoring"
	case Selected:
		return "selected"
	case Escalating:
		return "escalating"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}
