package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	pkgtypes "github.com/skarthickct/cloud-formation/pkg/types"
)

// CFNAPI is the slice of the CloudFormation control plane the stack
// operations call. *cloudformation.Client satisfies it.
type CFNAPI interface {
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
}

// stackWaitTimeout bounds stack create/update/delete waits. The NAT
// gateway alone can take a couple of minutes; CloudFormation adds its
// own overhead on top.
const stackWaitTimeout = 30 * time.Minute

// StackAction describes what DeployStack did.
type StackAction string

const (
	StackCreated   StackAction = "created"
	StackUpdated   StackAction = "updated"
	StackUnchanged StackAction = "unchanged"
)

// StackOutput is one CloudFormation stack output.
type StackOutput struct {
	Key         string
	Value       string
	Description string
}

// StackInfo summarizes a CloudFormation stack.
type StackInfo struct {
	Name    string
	Status  string
	Reason  string
	Outputs []StackOutput
}

// DeployStack creates the stack if it does not exist, otherwise updates
// it. CloudFormation owns ordering and rollback; this call blocks until
// the operation completes. An update with no changes is reported as
// StackUnchanged.
func (c *Client) DeployStack(name, templateBody, environment string) (StackAction, error) {
	params := []cfntypes.Parameter{
		{
			ParameterKey:   aws.String("EnvironmentName"),
			ParameterValue: aws.String(environment),
		},
	}
	tags := []cfntypes.Tag{
		{Key: aws.String(pkgtypes.TagManaged), Value: aws.String(pkgtypes.ManagedTagValue)},
		{Key: aws.String(pkgtypes.TagEnvironment), Value: aws.String(environment)},
	}

	exists, err := c.stackExists(name)
	if err != nil {
		return "", err
	}

	describe := &cloudformation.DescribeStacksInput{StackName: aws.String(name)}

	if !exists {
		_, err = c.CFN.CreateStack(c.ctx, &cloudformation.CreateStackInput{
			StackName:    aws.String(name),
			TemplateBody: aws.String(templateBody),
			Parameters:   params,
			Tags:         tags,
			OnFailure:    cfntypes.OnFailureRollback,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create stack %s: %w", name, err)
		}

		waiter := cloudformation.NewStackCreateCompleteWaiter(c.CFN)
		if err := waiter.Wait(c.ctx, describe, stackWaitTimeout); err != nil {
			return "", fmt.Errorf("stack %s did not reach CREATE_COMPLETE: %w", name, err)
		}
		return StackCreated, nil
	}

	_, err = c.CFN.UpdateStack(c.ctx, &cloudformation.UpdateStackInput{
		StackName:    aws.String(name),
		TemplateBody: aws.String(templateBody),
		Parameters:   params,
		Tags:         tags,
	})
	if err != nil {
		// CloudFormation rejects no-op updates with a ValidationError.
		if strings.Contains(err.Error(), "No updates are to be performed") {
			return StackUnchanged, nil
		}
		return "", fmt.Errorf("failed to update stack %s: %w", name, err)
	}

	waiter := cloudformation.NewStackUpdateCompleteWaiter(c.CFN)
	if err := waiter.Wait(c.ctx, describe, stackWaitTimeout); err != nil {
		return "", fmt.Errorf("stack %s did not reach UPDATE_COMPLETE: %w", name, err)
	}
	return StackUpdated, nil
}

// DeleteStack deletes the stack and blocks until CloudFormation has
// finished rolling the resources away.
func (c *Client) DeleteStack(name string) error {
	exists, err := c.stackExists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("stack %s does not exist", name)
	}

	_, err = c.CFN.DeleteStack(c.ctx, &cloudformation.DeleteStackInput{StackName: aws.String(name)})
	if err != nil {
		return fmt.Errorf("failed to delete stack %s: %w", name, err)
	}

	waiter := cloudformation.NewStackDeleteCompleteWaiter(c.CFN)
	describe := &cloudformation.DescribeStacksInput{StackName: aws.String(name)}
	if err := waiter.Wait(c.ctx, describe, stackWaitTimeout); err != nil {
		return fmt.Errorf("stack %s did not finish deleting: %w", name, err)
	}

	return nil
}

// DescribeStack returns the stack's status and outputs.
func (c *Client) DescribeStack(name string) (*StackInfo, error) {
	output, err := c.CFN.DescribeStacks(c.ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(name),
	})
	if err != nil {
		if isStackMissing(err) {
			return nil, fmt.Errorf("stack %s does not exist", name)
		}
		return nil, fmt.Errorf("failed to describe stack %s: %w", name, err)
	}
	if len(output.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s does not exist", name)
	}

	stack := output.Stacks[0]
	info := &StackInfo{
		Name:   deref(stack.StackName),
		Status: string(stack.StackStatus),
		Reason: deref(stack.StackStatusReason),
	}
	for _, out := range stack.Outputs {
		info.Outputs = append(info.Outputs, StackOutput{
			Key:         deref(out.OutputKey),
			Value:       deref(out.OutputValue),
			Description: deref(out.Description),
		})
	}

	return info, nil
}

func (c *Client) stackExists(name string) (bool, error) {
	_, err := c.CFN.DescribeStacks(c.ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(name),
	})
	if err != nil {
		if isStackMissing(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to describe stack %s: %w", name, err)
	}
	return true, nil
}

// isStackMissing matches CloudFormation's ValidationError for a stack
// that does not exist; the SDK exposes no typed error for it.
func isStackMissing(err error) bool {
	return err != nil && strings.Contains(err.Error(), "does not exist")
}
