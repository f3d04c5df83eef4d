package pipeline

import (
	pipeline_approve "github.com/mlship/mlship/cmd/mlship/subcommands/pipeline/approve"
	pipeline_find "github.com/mlship/mlship/cmd/mlship/subcommands/pipeline/find"
	pipeline_graph "github.com/mlship/mlship/cmd/mlship/subcommands/pipeline/graph"
	pipeline_show "github.com/mlship/mlship/cmd/mlship/subcommands/pipeline/show"
	pipeline_wait "github.com/mlship/mlship/cmd/mlship/subcommands/pipeline/wait"
	"github.com/youta-t/flarc"
)

func New() (flarc.Command, error) {
	find, err := pipeline_find.New()
	if err != nil {
		return nil, err
	}
	show, err := pipeline_show.New()
	if err != nil {
		return nil, err
	}
	graph, err := pipeline_graph.New()
	if err != nil {
		return nil, err
	}
	approve, err := pipeline_approve.New()
	if err != nil {
		return nil, err
	}
	wait, err := pipeline_wait.New()
	if err != nil {
		return nil, err
	}

	return flarc.NewCommandGroup(
		"Inspect and operate deployment pipeline executions.",
		struct{}{},
		flarc.WithSubcommand("find", find),
		flarc.WithSubcommand("show", show),
		flarc.WithSubcommand("graph", graph),
		flarc.WithSubcommand("approve", approve),
		flarc.WithSubcommand("wait", wait),
	)
}
