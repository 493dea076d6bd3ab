package aws

import (
	"context"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/stacklift/stacklift/internal/provision"
)

// DescribeStack returns the current stack status. A stack the API has no
// record of maps to PhaseNotFound rather than an error.
func (c *Client) DescribeStack(ctx context.Context, handle provision.StackHandle) (provision.StackStatus, error) {
	out, err := c.cfn.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: awssdk.String(handle.Name),
	})
	if err != nil {
		if isStackMissing(err) {
			return provision.StackStatus{Phase: provision.PhaseNotFound, ObservedAt: time.Now()}, nil
		}
		return provision.StackStatus{}, fmt.Errorf("failed to describe stack %s: %w", handle, err)
	}
	if len(out.Stacks) == 0 {
		return provision.StackStatus{Phase: provision.PhaseNotFound, ObservedAt: time.Now()}, nil
	}

	stack := out.Stacks[0]
	return provision.StackStatus{
		Phase:      mapStackStatus(stack.StackStatus),
		Reason:     awssdk.ToString(stack.StackStatusReason),
		ObservedAt: time.Now(),
	}, nil
}

// CreateOrUpdateStack issues a create when the stack does not exist yet and
// an update otherwise. An update with no changes is treated as success.
func (c *Client) CreateOrUpdateStack(ctx context.Context, handle provision.StackHandle, templateBody string) error {
	status, err := c.DescribeStack(ctx, handle)
	if err != nil {
		return err
	}

	if status.Phase == provision.PhaseNotFound {
		_, err = c.cfn.CreateStack(ctx, &cloudformation.CreateStackInput{
			StackName:    awssdk.String(handle.Name),
			TemplateBody: awssdk.String(templateBody),
			Capabilities: []cfntypes.Capability{cfntypes.CapabilityCapabilityNamedIam},
			Tags:         stackTags(handle),
		})
		if err != nil {
			return classify("create stack", err)
		}
		return nil
	}

	_, err = c.cfn.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    awssdk.String(handle.Name),
		TemplateBody: awssdk.String(templateBody),
		Capabilities: []cfntypes.Capability{cfntypes.CapabilityCapabilityNamedIam},
	})
	if err != nil {
		if isNoChanges(err) {
			return nil
		}
		return classify("update stack", err)
	}
	return nil
}

// DeleteStack requests stack deletion.
func (c *Client) DeleteStack(ctx context.Context, handle provision.StackHandle) error {
	_, err := c.cfn.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: awssdk.String(handle.Name),
	})
	if err != nil {
		return classify("delete stack", err)
	}
	return nil
}

// CancelUpdate aborts an update currently in flight.
func (c *Client) CancelUpdate(ctx context.Context, handle provision.StackHandle) error {
	_, err := c.cfn.CancelUpdateStack(ctx, &cloudformation.CancelUpdateStackInput{
		StackName: awssdk.String(handle.Name),
	})
	if err != nil {
		return classify("cancel update", err)
	}
	return nil
}

// ContinueRollback resumes a rollback stuck in UPDATE_ROLLBACK_FAILED.
func (c *Client) ContinueRollback(ctx context.Context, handle provision.StackHandle) error {
	_, err := c.cfn.ContinueUpdateRollback(ctx, &cloudformation.ContinueUpdateRollbackInput{
		StackName: awssdk.String(handle.Name),
	})
	if err != nil {
		return classify("continue rollback", err)
	}
	return nil
}

func stackTags(handle provision.StackHandle) []cfntypes.Tag {
	return []cfntypes.Tag{
		{Key: awssdk.String("managed-by"), Value: awssdk.String("stacklift")},
		{Key: awssdk.String("environment"), Value: awssdk.String(handle.Environment)},
	}
}

// mapStackStatus maps CloudFormation stack statuses onto the closed phase
// set. Create-time rollback statuses fold into the create phases: a rolled
// back create is a failed create from the orchestrator's point of view.
func mapStackStatus(s cfntypes.StackStatus) provision.Phase {
	switch s {
	case cfntypes.StackStatusCreateInProgress, cfntypes.StackStatusReviewInProgress,
		cfntypes.StackStatusRollbackInProgress:
		return provision.PhaseCreateInProgress
	case cfntypes.StackStatusCreateComplete:
		return provision.PhaseCreateComplete
	case cfntypes.StackStatusCreateFailed, cfntypes.StackStatusRollbackComplete,
		cfntypes.StackStatusRollbackFailed:
		return provision.PhaseCreateFailed
	case cfntypes.StackStatusUpdateInProgress, cfntypes.StackStatusUpdateCompleteCleanupInProgress:
		return provision.PhaseUpdateInProgress
	case cfntypes.StackStatusUpdateComplete:
		return provision.PhaseUpdateComplete
	case cfntypes.StackStatusUpdateFailed:
		return provision.PhaseUpdateFailed
	case cfntypes.StackStatusUpdateRollbackInProgress, cfntypes.StackStatusUpdateRollbackCompleteCleanupInProgress:
		return provision.PhaseUpdateRollbackInProgress
	case cfntypes.StackStatusUpdateRollbackComplete:
		return provision.PhaseUpdateRollbackComplete
	case cfntypes.StackStatusUpdateRollbackFailed:
		return provision.PhaseUpdateRollbackFailed
	case cfntypes.StackStatusDeleteInProgress:
		return provision.PhaseDeleteInProgress
	case cfntypes.StackStatusDeleteComplete:
		return provision.PhaseDeleteComplete
	case cfntypes.StackStatusDeleteFailed:
		return provision.PhaseDeleteFailed
	default:
		return provision.PhaseNotFound
	}
}
