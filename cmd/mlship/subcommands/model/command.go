package model

import (
	apimodels "github.com/mlship/mlship/api/types/models"
	model_approve "github.com/mlship/mlship/cmd/mlship/subcommands/model/approve"
	model_find "github.com/mlship/mlship/cmd/mlship/subcommands/model/find"
	model_show "github.com/mlship/mlship/cmd/mlship/subcommands/model/show"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	find, err := model_find.New()
	if err != nil {
		return nil, err
	}
	show, err := model_show.New()
	if err != nil {
		return nil, err
	}
	approve, err := model_approve.New(apimodels.ApprovalApproved)
	if err != nil {
		return nil, err
	}
	reject, err := model_approve.New(apimodels.ApprovalRejected)
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Manage model package versions in the model registry.",
		struct{}{},
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("approve", approve),
		flarc.WithSubcommand("reject", reject),
	)
}
