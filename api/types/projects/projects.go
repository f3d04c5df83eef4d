package projects

import (
	"github.com/mlship/mlship/api/types/internal/utils/cmp"
	"github.com/mlship/mlship/api/types/misc/rfctime"
)

// Status of a deployment project, as the vendor reports it.
const (
	StatusPending        string = "Pending"
	StatusCreateComplete string = "CreateCompleted"
	StatusCreateFailed   string = "CreateFailed"
	StatusDeleting       string = "Deleting"
)

// Template is the vendor-provided project template the project was
// provisioned from.
type Template struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (t Template) Equal(o Template) bool {
	return t.Name == o.Name && t.Version == o.Version
}

// Repository is a source repository wired into the project's pipelines.
type Repository struct {
	Name   string `json:"name"`
	Url    string `json:"url"`
	Branch string `json:"branch"`
}

func (r Repository) Equal(o Repository) bool {
	return r.Name == o.Name && r.Url == o.Url && r.Branch == o.Branch
}

type Summary struct {
	Name      string          `json:"name"`
	ProjectId string          `json:"projectId"`
	Status    string          `json:"status"`
	CreatedAt rfctime.RFC3339 `json:"createdAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.Name == o.Name &&
		s.ProjectId == o.ProjectId &&
		s.Status == o.Status &&
		s.CreatedAt.Equal(o.CreatedAt)
}

type Detail struct {
	Summary
	Description string `json:"description,omitempty"`
	Template    Template `json:"template"`

	// source repositories the project watches
	Repositories []Repository `json:"repositories"`

	// names of the pipelines the template provisioned (build, deploy)
	Pipelines []string `json:"pipelines"`
}

func (d Detail) Equal(o Detail) bool {
	if len(d.Pipelines) != len(o.Pipelines) {
		return false
	}
	for nth := range d.Pipelines {
		if d.Pipelines[nth] != o.Pipelines[nth] {
			return false
		}
	}

	return d.Summary.Equal(o.Summary) &&
		d.Description == o.Description &&
		d.Template.Equal(o.Template) &&
		cmp.SliceEqualUnordered(d.Repositories, o.Repositories)
}
