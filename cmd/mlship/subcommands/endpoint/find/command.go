package find

import (
	"context"
	"encoding/json"
	"log"

	apiendpoints "github.com/mlship/mlship/api/types/endpoints"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Name []string `flag:"name" alias:"n" metavar:"NAME" help:"Find endpoints with this name. Repeatable."`
}

type Option struct {
	find Find
}

type Find func(
	ctx context.Context,
	client krst.Client,
	names []string,
) ([]apiendpoints.Summary, error)

func WithFind(find Find) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.find = find
		return opt
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		find: RunFindEndpoints,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Display inference endpoints of the project.",
		Flag{},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Display inference endpoints of the project.

Without '--name', all endpoints are displayed.
`),
	)
}

func Task(find Find) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		shipEnv env.ShipEnv,
		client krst.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		found, err := find(ctx, client, cl.Flags().Name)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found endpoints")
		}
		return nil
	}
}

func RunFindEndpoints(
	ctx context.Context, client krst.Client, names []string,
) ([]apiendpoints.Summary, error) {
	return client.FindEndpoints(ctx, names)
}
