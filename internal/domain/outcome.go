package domain

type Outcome int

const (
	OutcomeDelivered      Outcome = iota // Uploaded to the destination
	OutcomeFailed                        // Fetch, transform or validation failed, nothing written
	OutcomeFallback                      // Upload failed, local copy written
	OutcomeFallbackFailed                // Upload and local copy both failed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeFailed:
		return "failed"
	case OutcomeFallback:
		return "fallback"
	case OutcomeFallbackFailed:
		return "fallback_failed"
	default:
		return "unknown"
	}
}

// ExitCode maps the outcome to the process exit status.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeDelivered:
		return 0
	case OutcomeFallback:
		return 2
	case OutcomeFallbackFailed:
		return 3
	default:
		return 1
	}
}
