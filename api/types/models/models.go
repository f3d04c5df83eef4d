package models

import (
	"fmt"
	"strings"

	"github.com/mlship/mlship/api/types/internal/utils/cmp"
	"github.com/mlship/mlship/api/types/misc/rfctime"
)

// Approval status of a model package version.
//
// Changing it to ApprovalApproved is the event which triggers the
// deployment pipeline on the vendor side.
const (
	ApprovalPending  string = "PendingManualApproval"
	ApprovalApproved string = "Approved"
	ApprovalRejected string = "Rejected"
)

// Registration status of a model package version.
const (
	StatusPending   string = "Pending"
	StatusCompleted string = "Completed"
	StatusFailed    string = "Failed"
)

// ParseApprovalStatus maps a loose user expression to the exact enum
// the vendor defines.
func ParseApprovalStatus(s string) (string, error) {
	switch strings.ToLower(s) {
	case "approved", "approve":
		return ApprovalApproved, nil
	case "rejected", "reject":
		return ApprovalRejected, nil
	case "pending", "pendingmanualapproval":
		return ApprovalPending, nil
	}
	return "", fmt.Errorf("unknown approval status: %s", s)
}

type Summary struct {
	// model package group the version belongs to
	Group string `json:"group"`

	Version int `json:"version"`

	// registration status: Pending, Completed or Failed
	Status string `json:"status"`

	ApprovalStatus string `json:"approvalStatus"`

	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.Group == o.Group &&
		s.Version == o.Version &&
		s.Status == o.Status &&
		s.ApprovalStatus == o.ApprovalStatus &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}

// Id is the "GROUP:VERSION" expression of the model package version,
// as the vendor uses it in pipeline trigger details.
func (s Summary) Id() string {
	return fmt.Sprintf("%s:%d", s.Group, s.Version)
}

// InferenceSpec describes how the vendor serves this model package.
type InferenceSpec struct {
	// container image serving the model
	Image string `json:"image"`

	// location of the trained model artifact
	ModelDataUrl string `json:"modelDataUrl"`

	SupportedContentTypes []string `json:"supportedContentTypes,omitempty"`
}

func (i InferenceSpec) Equal(o InferenceSpec) bool {
	if len(i.SupportedContentTypes) != len(o.SupportedContentTypes) {
		return false
	}
	for nth := range i.SupportedContentTypes {
		if i.SupportedContentTypes[nth] != o.SupportedContentTypes[nth] {
			return false
		}
	}
	return i.Image == o.Image && i.ModelDataUrl == o.ModelDataUrl
}

type Detail struct {
	Summary
	Description string        `json:"description,omitempty"`
	Inference   InferenceSpec `json:"inference"`

	// evaluation metrics registered together with the model
	Metrics map[string]float64 `json:"metrics,omitempty"`

	// note left by whoever changed the approval status last
	ApprovalNote string `json:"approvalNote,omitempty"`

	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		d.Description == o.Description &&
		d.Inference.Equal(o.Inference) &&
		cmp.MapEqual(d.Metrics, o.Metrics) &&
		d.ApprovalNote == o.ApprovalNote &&
		d.CreatedAt.Equal(o.CreatedAt)
}

// ApprovalChange is the payload to update the approval status of a
// model package version.
type ApprovalChange struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}
