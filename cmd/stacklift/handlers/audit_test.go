package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklift/stacklift/internal/provision"
	"github.com/stacklift/stacklift/internal/provision/provisiontest"
)

func TestAudit(t *testing.T) {
	client := &provisiontest.FakeClient{
		Statuses:  []provision.StackStatus{{Phase: provision.PhaseUpdateComplete}},
		Resources: []provision.Resource{{ID: "orders-db", CreatedAt: time.Now()}},
	}
	swapFactories(t, testConfig(t), client, &autoPrompter{})

	err := Audit(context.Background(), "", "dev", AuditFlags{JSON: true})
	require.NoError(t, err)
}

func TestAudit_PostDeployPhase(t *testing.T) {
	client := &provisiontest.FakeClient{
		Statuses:  []provision.StackStatus{{Phase: provision.PhaseUpdateComplete}},
		Resources: []provision.Resource{{ID: "orders-db", CreatedAt: time.Now()}},
	}
	swapFactories(t, testConfig(t), client, &autoPrompter{})

	err := Audit(context.Background(), "", "staging", AuditFlags{Phase: "post-deploy", JSON: true})
	require.NoError(t, err)
}

func TestAudit_UnknownPhase(t *testing.T) {
	swapFactories(t, testConfig(t), &provisiontest.FakeClient{}, &autoPrompter{})

	err := Audit(context.Background(), "", "dev", AuditFlags{Phase: "mid-deploy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown phase")
}

func TestAudit_BlockingFailure(t *testing.T) {
	client := &provisiontest.FakeClient{
		Statuses: []provision.StackStatus{{Phase: provision.PhaseUpdateComplete}},
	}
	cfg := testConfig(t)
	cfg.Security.EncryptionAtRest = false
	swapFactories(t, cfg, client, &autoPrompter{})

	err := Audit(context.Background(), "", "staging", AuditFlags{JSON: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit failed")
}

func TestAudit_CategoryFilter(t *testing.T) {
	client := &provisiontest.FakeClient{
		Statuses: []provision.StackStatus{{Phase: provision.PhaseUpdateComplete}},
	}
	cfg := testConfig(t)
	// The encryption failure is outside the filtered category, so a
	// cost-only audit still passes.
	cfg.Security.EncryptionAtRest = false
	swapFactories(t, cfg, client, &autoPrompter{})

	err := Audit(context.Background(), "", "staging", AuditFlags{Category: "cost", JSON: true})
	require.NoError(t, err)
}
