package lifecycle

import (
	"fmt"

	"github.com/stacklift/stacklift/internal/provision"
)

// Strategy is the recovery action selected after a failed deploy.
type Strategy string

const (
	// StrategyContinueRollback resumes the provisioning system's own
	// rollback and re-polls to a rollback-terminal phase.
	StrategyContinueRollback Strategy = "continue-rollback"

	// StrategyCancelUpdate aborts an update that another operator raced in
	// mid-run, then re-polls.
	StrategyCancelUpdate Strategy = "cancel-update"

	// StrategyManualIntervention refuses automatic recovery: from a stable
	// phase there is no safe automatic path back to an unknown prior
	// configuration.
	StrategyManualIntervention Strategy = "manual-intervention"
)

// SelectStrategy picks the recovery strategy for a phase. It is a pure
// function of the phase and nothing else.
func SelectStrategy(phase provision.Phase) Strategy {
	switch phase {
	case provision.PhaseUpdateFailed, provision.PhaseUpdateRollbackFailed:
		return StrategyContinueRollback
	case provision.PhaseUpdateInProgress:
		return StrategyCancelUpdate
	default:
		return StrategyManualIntervention
	}
}

// UnsafeRollbackError reports that no automatic recovery path exists from
// the observed phase. It is always surfaced, never silently ignored:
// proceeding without a defined recovery path is a correctness risk.
type UnsafeRollbackError struct {
	Phase provision.Phase
}

func (e *UnsafeRollbackError) Error() string {
	return fmt.Sprintf("no automatic recovery path from %s: manual intervention required", e.Phase)
}
