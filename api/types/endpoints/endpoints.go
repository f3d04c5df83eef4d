package endpoints

import (
	"github.com/mlship/mlship/api/types/internal/utils/cmp"
	"github.com/mlship/mlship/api/types/misc/rfctime"
)

// Status of an inference endpoint.
const (
	StatusCreating     string = "Creating"
	StatusUpdating     string = "Updating"
	StatusInService    string = "InService"
	StatusFailed       string = "Failed"
	StatusOutOfService string = "OutOfService"
	StatusDeleting     string = "Deleting"
)

type Summary struct {
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.Name == o.Name &&
		s.Status == o.Status &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}

// Settled returns true when the endpoint is not in a transitional status.
func (s Summary) Settled() bool {
	switch s.Status {
	case StatusInService, StatusFailed, StatusOutOfService:
		return true
	}
	return false
}

// Variant is one serving configuration behind an endpoint.
type Variant struct {
	Name string `json:"name"`

	// "GROUP:VERSION" of the model package the variant serves
	ModelPackage string `json:"modelPackage"`

	Weight float64 `json:"weight"`

	InstanceCount int `json:"instanceCount"`
}

func (v Variant) Equal(o Variant) bool {
	return v.Name == o.Name &&
		v.ModelPackage == o.ModelPackage &&
		v.Weight == o.Weight &&
		v.InstanceCount == o.InstanceCount
}

type Detail struct {
	Summary

	Variants []Variant `json:"variants"`

	// set when Status is Failed
	FailureReason string `json:"failureReason,omitempty"`

	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

func (d Detail) Equal(o Detail) bool {
	return d.Summary.Equal(o.Summary) &&
		cmp.SliceEqualUnordered(d.Variants, o.Variants) &&
		d.FailureReason == o.FailureReason &&
		d.CreatedAt.Equal(o.CreatedAt)
}
