package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	apiendpoints "github.com/mlship/mlship/api/types/endpoints"
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
	name string,
) (apiendpoints.Detail, error)

func WithRunner(show Show) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.show = show
		return opt
	}
}

const ARG_ENDPOINT = "ENDPOINT"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		show: RunShowEndpoint,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Show an inference endpoint.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_ENDPOINT, Required: false,
				Help: "Name of the endpoint to be shown. Default: the staging endpoint in mlshipenv.",
			},
		},
		common.NewTask(Task(option.show)),
		flarc.WithDescription(`
Show an inference endpoint: its status and the serving variants behind
it, each with the model package version it serves and its traffic weight.
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
		name := shipEnv.StagingEndpoint
		if args := cl.Args()[ARG_ENDPOINT]; 0 < len(args) {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf(
				"%w: endpoint name is not given. pass it as argument or set it in mlshipenv",
				flarc.ErrUsage,
			)
		}

		detail, err := show(ctx, client, name)
		if err != nil {
			return fmt.Errorf("%w: endpoint:%s", err, name)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump the endpoint")
		}
		return nil
	}
}

func RunShowEndpoint(
	ctx context.Context, client krst.Client, name string,
) (apiendpoints.Detail, error) {
	return client.GetEndpoint(ctx, name)
}
