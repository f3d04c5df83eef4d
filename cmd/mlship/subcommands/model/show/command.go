package show

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	apimodels "github.com/mlship/mlship/api/types/models"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Group string `flag:"group" alias:"g" metavar:"GROUP" help:"Model package group the version belongs to. Default: the group in mlshipenv."`
}

type Option struct {
	show Show
}

type Show func(
	ctx context.Context,
	client krst.Client,
	group string,
	version int,
) (apimodels.Detail, error)

func WithRunner(show Show) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.show = show
		return opt
	}
}

const ARG_VERSION = "VERSION"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		show: RunShowModel,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Show a model package version in the model registry.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_VERSION, Required: true,
				Help: "Version number of the model package to be shown.",
			},
		},
		common.NewTask(Task(option.show)),
		flarc.WithDescription(`
Show a model package version: its registration status, approval status,
evaluation metrics and how the vendor serves it.
`),
	)
}

func Task(show Show) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		shipEnv env.ShipEnv,
		client krst.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		group := cl.Flags().Group
		if group == "" {
			group = shipEnv.ModelGroup
		}
		if group == "" {
			return fmt.Errorf(
				"%w: model package group is not given. pass --group or set it in mlshipenv",
				flarc.ErrUsage,
			)
		}

		rawVersion := cl.Args()[ARG_VERSION][0]
		version, err := strconv.Atoi(rawVersion)
		if err != nil {
			return fmt.Errorf("%w: VERSION should be an integer: %s", flarc.ErrUsage, rawVersion)
		}

		detail, err := show(ctx, client, group, version)
		if err != nil {
			return fmt.Errorf("%w: model package:%s:%d", err, group, version)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump the model package version")
		}
		return nil
	}
}

func RunShowModel(
	ctx context.Context, client krst.Client, group string, version int,
) (apimodels.Detail, error) {
	return client.GetModel(ctx, group, version)
}
