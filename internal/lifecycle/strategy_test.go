package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stacklift/stacklift/internal/provision"
)

func TestSelectStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase provision.Phase
		want  Strategy
	}{
		{provision.PhaseUpdateFailed, StrategyContinueRollback},
		{provision.PhaseUpdateRollbackFailed, StrategyContinueRollback},
		{provision.PhaseUpdateInProgress, StrategyCancelUpdate},
		{provision.PhaseUpdateComplete, StrategyManualIntervention},
		{provision.PhaseCreateFailed, StrategyManualIntervention},
		{provision.PhaseDeleteFailed, StrategyManualIntervention},
		{provision.PhaseNotFound, StrategyManualIntervention},
	}
	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SelectStrategy(tt.phase))
		})
	}
}

func TestUnsafeRollbackError_NamesThePhase(t *testing.T) {
	t.Parallel()
	err := &UnsafeRollbackError{Phase: provision.PhaseCreateFailed}
	assert.Contains(t, err.Error(), "CREATE_FAILED")
	assert.Contains(t, err.Error(), "manual intervention")
}
