package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/youta-t/flarc"
)

type Option struct {
	show Show
}

type Show func(
	ctx context.Context,
	client krst.Client,
	executionId string,
) (apipipelines.Detail, error)

func WithRunner(show Show) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.show = show
		return opt
	}
}

const ARG_EXECUTION_ID = "EXECUTION_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		show: RunShowExecution,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Show a pipeline execution with its stages.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_EXECUTION_ID, Required: true,
				Help: "Id of the execution to be shown.",
			},
		},
		common.NewTask(Task(option.show)),
		flarc.WithDescription(`
Show a pipeline execution: what triggered it, its stages in execution
order and, when one is waiting, the pending manual approval gate.
`),
	)
}

func Task(show Show) common.Task[struct{}] {
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

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump the execution")
		}
		return nil
	}
}

func RunShowExecution(
	ctx context.Context, client krst.Client, executionId string,
) (apipipelines.Detail, error) {
	return client.GetExecution(ctx, executionId)
}
