package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	smithy "github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/cbroompearson/cdk/internal/template"
)

// MaxTemplateBodyBytes is the largest inline template CloudFormation accepts.
const MaxTemplateBodyBytes = 51200

// DefaultPollInterval is the wait between status checks.
const DefaultPollInterval = 5 * time.Second

// ChangeSetPrefix starts every change set name created by the backend.
const ChangeSetPrefix = "stackctl-"

// CloudFormationAPI is the subset of the CloudFormation client used here.
type CloudFormationAPI interface {
	DescribeStacks(ctx context.Context, in *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateChangeSet(ctx context.Context, in *cloudformation.CreateChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateChangeSetOutput, error)
	DescribeChangeSet(ctx context.Context, in *cloudformation.DescribeChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeChangeSetOutput, error)
	ExecuteChangeSet(ctx context.Context, in *cloudformation.ExecuteChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.ExecuteChangeSetOutput, error)
	DeleteChangeSet(ctx context.Context, in *cloudformation.DeleteChangeSetInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteChangeSetOutput, error)
	GetTemplate(ctx context.Context, in *cloudformation.GetTemplateInput, optFns ...func(*cloudformation.Options)) (*cloudformation.GetTemplateOutput, error)
}

// CloudFormationBackend deploys through a change set: create it, wait for it,
// then execute it and wait for the stack to settle.
type CloudFormationBackend struct {
	client       CloudFormationAPI
	logger       *slog.Logger
	PollInterval time.Duration
	// NewChangeSetName is replaceable for tests.
	NewChangeSetName func() string
}

// NewCloudFormationBackend creates a backend from a loaded SDK config.
func NewCloudFormationBackend(cfg aws.Config, logger *slog.Logger) *CloudFormationBackend {
	return NewCloudFormationBackendWithClient(cloudformation.NewFromConfig(cfg), logger)
}

// NewCloudFormationBackendWithClient creates a backend over client.
func NewCloudFormationBackendWithClient(client CloudFormationAPI, logger *slog.Logger) *CloudFormationBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudFormationBackend{
		client:       client,
		logger:       logger.With("component", "provision"),
		PollInterval: DefaultPollInterval,
		NewChangeSetName: func() string {
			return ChangeSetPrefix + uuid.NewString()
		},
	}
}

// Apply implements Backend.
func (b *CloudFormationBackend) Apply(ctx context.Context, target Target) (Outcome, error) {
	if err := target.validate(); err != nil {
		return aborted(target, "", err.Error()), err
	}
	log := b.logger.With("stack", target.StackName)

	body, err := template.ToCompactJSON(target.Template)
	if err != nil {
		return aborted(target, "", err.Error()), fmt.Errorf("encoding template: %w", err)
	}
	if len(body) > MaxTemplateBodyBytes {
		err := fmt.Errorf("template body is %d bytes, limit is %d", len(body), MaxTemplateBodyBytes)
		return aborted(target, "", err.Error()), err
	}

	existing, err := b.describeStack(ctx, target.StackName)
	if err != nil {
		return aborted(target, "", err.Error()), err
	}
	changeSetType := cfntypes.ChangeSetTypeUpdate
	if existing == nil || existing.StackStatus == cfntypes.StackStatusReviewInProgress {
		changeSetType = cfntypes.ChangeSetTypeCreate
	}

	name := b.NewChangeSetName()
	log.Info("creating change set", "change_set", name, "type", changeSetType)
	_, err = b.client.CreateChangeSet(ctx, &cloudformation.CreateChangeSetInput{
		StackName:     aws.String(target.StackName),
		ChangeSetName: aws.String(name),
		ChangeSetType: changeSetType,
		TemplateBody:  aws.String(string(body)),
		Capabilities:  []cfntypes.Capability{cfntypes.CapabilityCapabilityNamedIam},
		Tags:          stackTags(target.Tags),
		Description:   aws.String(target.Template.Description),
	})
	if err != nil {
		return aborted(target, name, err.Error()), fmt.Errorf("creating change set: %w", err)
	}

	ready, err := b.waitForChangeSet(ctx, target.StackName, name)
	if err != nil {
		return aborted(target, name, err.Error()), err
	}
	if !ready {
		log.Info("no changes", "change_set", name)
		if _, err := b.client.DeleteChangeSet(ctx, &cloudformation.DeleteChangeSetInput{
			StackName:     aws.String(target.StackName),
			ChangeSetName: aws.String(name),
		}); err != nil {
			log.Warn("failed to delete empty change set", "change_set", name, "error", err)
		}
		outputs := map[string]string(nil)
		if existing != nil {
			outputs = stackOutputs(existing)
		}
		return Outcome{Status: StatusUnchanged, StackName: target.StackName, ChangeSet: name, Outputs: outputs}, nil
	}

	log.Info("executing change set", "change_set", name)
	if _, err := b.client.ExecuteChangeSet(ctx, &cloudformation.ExecuteChangeSetInput{
		StackName:     aws.String(target.StackName),
		ChangeSetName: aws.String(name),
	}); err != nil {
		return aborted(target, name, err.Error()), fmt.Errorf("executing change set: %w", err)
	}

	stack, err := b.waitForStack(ctx, target.StackName)
	if err != nil {
		return aborted(target, name, err.Error()), err
	}

	status := StatusUpdated
	if changeSetType == cfntypes.ChangeSetTypeCreate {
		status = StatusCreated
	}
	log.Info("stack settled", "status", stack.StackStatus)
	return Outcome{Status: status, StackName: target.StackName, ChangeSet: name, Outputs: stackOutputs(stack)}, nil
}

// DeployedTemplate returns the template body of a deployed stack. ok is
// false when the stack does not exist.
func (b *CloudFormationBackend) DeployedTemplate(ctx context.Context, stackName string) (body string, ok bool, err error) {
	out, err := b.client.GetTemplate(ctx, &cloudformation.GetTemplateInput{
		StackName:     aws.String(stackName),
		TemplateStage: cfntypes.TemplateStageOriginal,
	})
	if err != nil {
		if isStackMissing(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading template of %s: %w", stackName, err)
	}
	return aws.ToString(out.TemplateBody), true, nil
}

func (b *CloudFormationBackend) describeStack(ctx context.Context, name string) (*cfntypes.Stack, error) {
	out, err := b.client.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{StackName: aws.String(name)})
	if err != nil {
		if isStackMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describing stack %s: %w", name, err)
	}
	if len(out.Stacks) == 0 {
		return nil, nil
	}
	return &out.Stacks[0], nil
}

// waitForChangeSet polls until the change set is ready. It reports false
// when CloudFormation found nothing to change.
func (b *CloudFormationBackend) waitForChangeSet(ctx context.Context, stackName, name string) (bool, error) {
	for {
		out, err := b.client.DescribeChangeSet(ctx, &cloudformation.DescribeChangeSetInput{
			StackName:     aws.String(stackName),
			ChangeSetName: aws.String(name),
		})
		if err != nil {
			return false, fmt.Errorf("describing change set %s: %w", name, err)
		}

		reason := aws.ToString(out.StatusReason)
		switch out.Status {
		case cfntypes.ChangeSetStatusCreateComplete:
			return true, nil
		case cfntypes.ChangeSetStatusFailed:
			if isNoChanges(reason) {
				return false, nil
			}
			return false, fmt.Errorf("change set %s failed: %s", name, reason)
		}

		if err := b.sleep(ctx); err != nil {
			return false, err
		}
	}
}

func (b *CloudFormationBackend) waitForStack(ctx context.Context, name string) (*cfntypes.Stack, error) {
	for {
		stack, err := b.describeStack(ctx, name)
		if err != nil {
			return nil, err
		}
		if stack == nil {
			return nil, &StackFailedError{StackName: name, Status: "DELETED"}
		}

		status := string(stack.StackStatus)
		switch {
		case strings.HasSuffix(status, "_IN_PROGRESS"):
		case strings.Contains(status, "ROLLBACK") || strings.HasSuffix(status, "_FAILED"):
			return stack, &StackFailedError{
				StackName: name,
				Status:    status,
				Reason:    aws.ToString(stack.StackStatusReason),
			}
		case strings.HasSuffix(status, "_COMPLETE"):
			return stack, nil
		}

		if err := b.sleep(ctx); err != nil {
			return nil, err
		}
	}
}

func (b *CloudFormationBackend) sleep(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(b.PollInterval):
		return nil
	}
}

func isStackMissing(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) &&
		apiErr.ErrorCode() == "ValidationError" &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}

func isNoChanges(reason string) bool {
	return strings.Contains(reason, "didn't contain changes") ||
		strings.Contains(reason, "No updates are to be performed")
}

func stackTags(tags map[string]string) []cfntypes.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]cfntypes.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, cfntypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func stackOutputs(stack *cfntypes.Stack) map[string]string {
	if len(stack.Outputs) == 0 {
		return nil
	}
	out := make(map[string]string, len(stack.Outputs))
	for _, o := range stack.Outputs {
		out[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}
	return out
}
