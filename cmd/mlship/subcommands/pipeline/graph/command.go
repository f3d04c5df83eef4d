package graph

import (
	"context"
	"fmt"
	"log"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/youta-t/flarc"
)

type Option struct {
	show func(
		ctx context.Context,
		client krst.Client,
		executionId string,
	) (apipipelines.Detail, error)
}

func WithRunner(
	show func(
		ctx context.Context,
		client krst.Client,
		executionId string,
	) (apipipelines.Detail, error),
) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.show = show
		return opt
	}
}

const ARG_EXECUTION_ID = "EXECUTION_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		show: func(
			ctx context.Context, client krst.Client, executionId string,
		) (apipipelines.Detail, error) {
			return client.GetExecution(ctx, executionId)
		},
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Render a pipeline execution as a DOT graph.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_EXECUTION_ID, Required: true,
				Help: "Id of the execution to be rendered.",
			},
		},
		common.NewTask(Task(option.show)),
		flarc.WithDescription(`
Render a pipeline execution as a graph in DOT (graphviz) format.

Stages are drawn in execution order, with the actions of each stage
hanging off it. Vertices are colored by status.

Example
-------

Visualize an execution with graphviz:

	{{ .Command }} EXECUTION_ID | dot -Tpng -o execution.png
`),
	)
}

func Task(
	show func(
		ctx context.Context,
		client krst.Client,
		executionId string,
	) (apipipelines.Detail, error),
) common.Task[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		shipEnv env.ShipEnv,
		client krst.Client,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		executionId := cl.Args()[ARG_EXECUTION_ID][0]

		detail, err := show(ctx, client, executionId)
		if err != nil {
			return fmt.Errorf("%w: execution:%s", err, executionId)
		}

		g, err := ToGraph(detail)
		if err != nil {
			return err
		}

		return draw.DOT(g, cl.Stdout())
	}
}

func statusColor(status string) string {
	switch status {
	case apipipelines.StageSucceeded:
		return "darkgreen"
	case apipipelines.StageInProgress:
		return "orange"
	case apipipelines.StageFailed:
		return "red"
	}
	return "gray"
}

// ToGraph converts an execution into a directed graph: stages chained
// in execution order, actions hanging off their stage.
func ToGraph(detail apipipelines.Detail) (graph.Graph[string, string], error) {
	g := graph.New(graph.StringHash, graph.Directed())

	prev := ""
	for _, stage := range detail.Stages {
		label := fmt.Sprintf("%s [%s]", stage.Name, stage.Status)
		if err := g.AddVertex(
			stage.Name,
			graph.VertexAttribute("label", label),
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("color", statusColor(stage.Status)),
		); err != nil {
			return nil, err
		}
		if prev != "" {
			if err := g.AddEdge(prev, stage.Name); err != nil {
				return nil, err
			}
		}
		prev = stage.Name

		for _, action := range stage.Actions {
			id := stage.Name + "/" + action.Name
			if err := g.AddVertex(
				id,
				graph.VertexAttribute("label", fmt.Sprintf("%s [%s]", action.Name, action.Status)),
				graph.VertexAttribute("color", statusColor(action.Status)),
			); err != nil {
				return nil, err
			}
			if err := g.AddEdge(stage.Name, id); err != nil {
				return nil, err
			}
		}

		if stage.Gate != nil {
			id := stage.Name + "/gate"
			if err := g.AddVertex(
				id,
				graph.VertexAttribute("label", "manual approval pending"),
				graph.VertexAttribute("shape", "diamond"),
				graph.VertexAttribute("color", "orange"),
			); err != nil {
				return nil, err
			}
			if err := g.AddEdge(stage.Name, id); err != nil {
				return nil, err
			}
		}
	}

	return g, nil
}
