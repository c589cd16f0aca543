package orchestrate

// Phase is a coarse stage of one orchestration run, published for UI-level
// progress feedback. Decoupled from collection logic: a nil reporter is
// silently ignored and a slow consumer never blocks the run.
type Phase string

const (
	PhaseCollecting    Phase = "collecting"
	PhaseDeduplicating Phase = "deduplicating"
	PhaseScoring       Phase = "scoring"
	PhaseAssembling    Phase = "assembling"
	PhaseDone          Phase = "done"
)

// report publishes a phase transition without ever blocking.
func report(ch chan<- Phase, p Phase) {
	if ch == nil {
		return
	}
	select {
	case ch <- p:
	default:
	}
}
