package pipelines

import (
	"github.com/mlship/mlship/api/types/internal/utils/cmp"
	"github.com/mlship/mlship/api/types/misc/rfctime"
)

// Status of a pipeline execution.
const (
	StatusRunning   string = "Running"
	StatusSucceeded string = "Succeeded"
	StatusFailed    string = "Failed"
	StatusStopping  string = "Stopping"
	StatusStopped   string = "Stopped"
)

// Status of a stage (and of an action in it).
const (
	StagePending    string = "Pending"
	StageInProgress string = "InProgress"
	StageSucceeded  string = "Succeeded"
	StageFailed     string = "Failed"
)

// What started the execution.
const (
	TriggerSourcePush    string = "SourcePush"
	TriggerModelApproval string = "ModelApproval"
	TriggerManual        string = "Manual"
)

type Trigger struct {
	Type string `json:"type"`

	// trigger-type specific detail: commit id for SourcePush,
	// "GROUP:VERSION" of the model package for ModelApproval.
	Detail string `json:"detail,omitempty"`
}

func (t Trigger) Equal(o Trigger) bool {
	return t.Type == o.Type && t.Detail == o.Detail
}

type Summary struct {
	// name of the pipeline this execution belongs to
	Pipeline string `json:"pipeline"`

	ExecutionId string `json:"executionId"`

	Status string `json:"status"`

	Trigger Trigger `json:"trigger"`

	StartedAt rfctime.RFC3339 `json:"startedAt"`
	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.Pipeline == o.Pipeline &&
		s.ExecutionId == o.ExecutionId &&
		s.Status == o.Status &&
		s.Trigger.Equal(o.Trigger) &&
		s.StartedAt.Equal(o.StartedAt) &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}

// Done returns true when the execution reached a terminal status.
func (s Summary) Done() bool {
	switch s.Status {
	case StatusSucceeded, StatusFailed, StatusStopped:
		return true
	}
	return false
}

// Gate is a manual approval checkpoint pending inside a stage.
type Gate struct {
	// one-time token required to submit a decision for this gate
	Token string `json:"token"`

	RequestedAt rfctime.RFC3339 `json:"requestedAt"`
}

func (g Gate) Equal(o Gate) bool {
	return g.Token == o.Token && g.RequestedAt.Equal(o.RequestedAt)
}

type Action struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (a Action) Equal(o Action) bool {
	return a.Name == o.Name && a.Status == o.Status && a.Message == o.Message
}

type Stage struct {
	Name   string `json:"name"`
	Status string `json:"status"`

	Actions []Action `json:"actions"`

	// set while the stage waits for a manual approval
	Gate *Gate `json:"gate,omitempty"`
}

func (s Stage) Equal(o Stage) bool {
	gateEq := (s.Gate == nil && o.Gate == nil) ||
		(s.Gate != nil && o.Gate != nil && s.Gate.Equal(*o.Gate))

	return s.Name == o.Name &&
		s.Status == o.Status &&
		cmp.SliceEqual(s.Actions, o.Actions) &&
		gateEq
}

type Detail struct {
	Summary

	// stages in execution order
	Stages []Stage `json:"stages"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		cmp.SliceEqual(d.Stages, o.Stages)
}

// PendingGate returns the stage waiting for a manual approval, if any.
func (d Detail) PendingGate() (Stage, bool) {
	for _, s := range d.Stages {
		if s.Gate != nil {
			return s, true
		}
	}
	return Stage{}, false
}

// GateDecision is the payload to resolve a pending manual approval gate.
type GateDecision struct {
	Token   string `json:"token"`
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}
