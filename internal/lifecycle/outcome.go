package lifecycle

import "github.com/stacklift/stacklift/internal/report"

// State is one position in the orchestration state machine.
type State string

const (
	StateInit        State = "INIT"
	StateValidating  State = "VALIDATING"
	StateApproved    State = "APPROVED"
	StateDenied      State = "DENIED"
	StateDeploying   State = "DEPLOYING"
	StatePolling     State = "POLLING"
	StateVerified    State = "VERIFIED"
	StateFailed      State = "DEPLOY_FAILED"
	StateRollingBack State = "ROLLING_BACK"
	StateCleaningUp  State = "CLEANING_UP"
	StateDone        State = "DONE"
)

// Classification is the explicit terminal classification every run produces
// exactly once.
type Classification string

const (
	ClassSuccess         Classification = "success"
	ClassBlockedByPolicy Classification = "blocked-by-policy"
	ClassNeedsManual     Classification = "failed-needs-manual-action"
	ClassAutoRecovered   Classification = "failed-auto-recovered"
)

// Outcome is the terminal result of one orchestration run: exactly one
// report and one classification, plus the state the machine stopped in and
// a concrete recommended next step for the operator.
type Outcome struct {
	Classification Classification
	State          State
	Report         *report.Report
	Recommendation string
}

// ExitCode maps the classification to the process exit code. Only 0 and 1
// are defined.
func (o *Outcome) ExitCode() int {
	if o.Classification == ClassSuccess {
		return 0
	}
	return 1
}
