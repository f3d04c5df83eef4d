package endpoint

import (
	endpoint_find "github.com/mlship/mlship/cmd/mlship/subcommands/endpoint/find"
	endpoint_invoke "github.com/mlship/mlship/cmd/mlship/subcommands/endpoint/invoke"
	endpoint_show "github.com/mlship/mlship/cmd/mlship/subcommands/endpoint/show"
	endpoint_wait "github.com/mlship/mlship/cmd/mlship/subcommands/endpoint/wait"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	find, err := endpoint_find.New()
	if err != nil {
		return nil, err
	}
	show, err := endpoint_show.New()
	if err != nil {
		return nil, err
	}
	invoke, err := endpoint_invoke.New()
	if err != nil {
		return nil, err
	}
	wait, err := endpoint_wait.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect and probe inference endpoints.",
		struct{}{},
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("invoke", invoke),
		flarc.WithSubcommand("wait", wait),
	)
}
