package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	apiprojects "github.com/mlship/mlship/api/types/projects"
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
) (apiprojects.Detail, error)

func WithRunner(show Show) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.show = show
		return opt
	}
}

const ARG_PROJECT = "PROJECT"

func New(
	options ...func(*Option) *Option,
) (flarc.Command, error) {
	option := &Option{
		show: RunShowProject,
	}

	for _, opt := range options {
		option = opt(option)
	}

	return flarc.NewCommand(
		"Show descriptive metadata of the deployment project.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_PROJECT, Required: false,
				Help: "Name of the project to be shown. Default: the project in mlshipenv.",
			},
		},
		common.NewTask(Task(option.show)),
		flarc.WithDescription(`
Show descriptive metadata of the deployment project: its provisioning
template, the source repositories it watches and the pipelines the
template provisioned.
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
		name := shipEnv.Project
		if args := cl.Args()[ARG_PROJECT]; 0 < len(args) {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf(
				"%w: project name is not given. pass it as argument or set it in mlshipenv",
				flarc.ErrUsage,
			)
		}

		detail, err := show(ctx, client, name)
		if err != nil {
			return fmt.Errorf("%w: project:%s", err, name)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump found project")
		}
		return nil
	}
}

func RunShowProject(
	ctx context.Context, client krst.Client, name string,
) (apiprojects.Detail, error) {
	return client.GetProject(ctx, name)
}
