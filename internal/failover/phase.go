package failover

// Phase is the controller lifecycle stage.
type Phase int

const (
	PhaseRunning    Phase = iota // Probing and following health
	PhaseDraining                // Withdrawing every route before exit
	PhaseTerminated              // Final, nothing more is probed or written
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "RUNNING"
	case PhaseDraining:
		return "DRAINING"
	case PhaseTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}
