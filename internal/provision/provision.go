// Package provision hands a synthesized template to a provisioning backend.
//
// The backends never retry: a failed or rolled-back apply is reported as an
// Aborted outcome together with the error.
package provision

import (
	"context"
	"fmt"

	cdk "github.com/cbroompearson/cdk"
)

// Status is the result of one apply.
type Status string

const (
	StatusCreated   Status = "created"
	StatusUpdated   Status = "updated"
	StatusUnchanged Status = "unchanged"
	StatusWritten   Status = "written"
	StatusAborted   Status = "aborted"
)

// Target is the complete target state of one stack.
type Target struct {
	StackName string
	Template  *cdk.Template
	// Tags are applied to the stack itself.
	Tags map[string]string
}

func (t Target) validate() error {
	if t.StackName == "" {
		return fmt.Errorf("target has no stack name")
	}
	if t.Template == nil {
		return fmt.Errorf("target %s has no template", t.StackName)
	}
	return nil
}

// Outcome reports what an apply did.
type Outcome struct {
	Status    Status            `json:"status"`
	StackName string            `json:"stack"`
	ChangeSet string            `json:"change_set,omitempty"`
	Location  string            `json:"location,omitempty"`
	Outputs   map[string]string `json:"outputs,omitempty"`
	Reason    string            `json:"reason,omitempty"`
}

// Backend applies a target state.
type Backend interface {
	Apply(ctx context.Context, target Target) (Outcome, error)
}

// StackFailedError is returned when CloudFormation ends in a failed or
// rolled-back state.
type StackFailedError struct {
	StackName string
	Status    string
	Reason    string
}

func (e *StackFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("stack %s ended in %s", e.StackName, e.Status)
	}
	return fmt.Sprintf("stack %s ended in %s: %s", e.StackName, e.Status, e.Reason)
}

func aborted(target Target, changeSet, reason string) Outcome {
	return Outcome{Status: StatusAborted, StackName: target.StackName, ChangeSet: changeSet, Reason: reason}
}
