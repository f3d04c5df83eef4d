package project

import (
	project_show "github.com/mlship/mlship/cmd/mlship/subcommands/project/show"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {

	show, err := project_show.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect the deployment project.",
		struct{}{},
		flarc.WithSubcommand("show", show),
	)
}
