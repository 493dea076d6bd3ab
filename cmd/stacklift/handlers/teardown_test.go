package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/provision/provisiontest"
)

func TestTeardown(t *testing.T) {
	client := &provisiontest.FakeClient{
		Statuses: []provision.StackStatus{{Phase: provision.PhaseDeleteComplete}},
	}
	swapFactories(t, testConfig(t), client, &autoPrompter{inputs: []string{"destroy"}})

	err := Teardown(context.Background(), "", "dev", TeardownFlags{JSON: true})
	require.NoError(t, err)
	assert.Equal(t, 1, client.CallsTo("DeleteStack"))
	assert.Zero(t, client.CallsTo("CreateSnapshot"), "dev discards data by default")
}

func TestTeardown_WrongPhraseDeniesWithoutMutation(t *testing.T) {
	client := &provisiontest.FakeClient{
		Statuses: []provision.StackStatus{{Phase: provision.PhaseUpdateComplete}},
	}
	swapFactories(t, testConfig(t), client, &autoPrompter{inputs: []string{"delete"}})

	err := Teardown(context.Background(), "", "dev", TeardownFlags{JSON: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked-by-policy")
	assert.Zero(t, client.CallsTo("DeleteStack"))
}

func TestTeardown_KeepDataSnapshots(t *testing.T) {
	client := &provisiontest.FakeClient{
		Statuses: []provision.StackStatus{{Phase: provision.PhaseDeleteComplete}},
	}
	swapFactories(t, testConfig(t), client, &autoPrompter{inputs: []string{"destroy"}})

	err := Teardown(context.Background(), "", "dev", TeardownFlags{KeepData: true, JSON: true})
	require.NoError(t, err)
	assert.Equal(t, 1, client.CallsTo("CreateSnapshot"))
}
