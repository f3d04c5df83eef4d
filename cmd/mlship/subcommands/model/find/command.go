package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	apimodels "github.com/mlship/mlship/api/types/models"
	"github.com/mlship/mlship/api/types/misc/rfctime"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	ptr "github.com/mlship/mlship/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Group    string   `flag:"group" alias:"g" metavar:"GROUP" help:"Model package group to search in. Default: the group in mlshipenv."`
	Approval []string `flag:"approval" alias:"a" metavar:"approved|rejected|pending" help:"Approval status of versions to be found. Repeatable."`
	Since    string   `flag:"since" metavar:"DATETIME" help:"Find versions only updated at this time or later. RFC3339, abbreviatable."`
}

type Option struct {
	find Find
}

type Find func(
	ctx context.Context,
	client krst.Client,
	query krst.FindModelParameter,
) ([]apimodels.Summary, error)

func WithFind(find Find) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.find = find
		return opt
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		find: RunFindModel,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Display model package versions that satisfy all specified conditions.",
		Flag{},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Display model package versions that satisfy all specified conditions.

If '--approval' is passed multiple times, versions in any of the statuses
are displayed.

'--since' is expected to be formatted in RFC3339, and it is also possible
to omit sub-seconds, seconds, minutes, hours and time offsets.
When the time offset is omitted, it is assumed the local time.
Delimiter between the date and time can be "T" or " " (space).

Example
-------

Finding versions waiting for approval:

	{{ .Command }} --approval pending

Finding versions approved or rejected today or later:

	{{ .Command }} -a approved -a rejected --since 2026-08-25
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
		flags := cl.Flags()

		group := flags.Group
		if group == "" {
			group = shipEnv.ModelGroup
		}
		if group == "" {
			return fmt.Errorf(
				"%w: model package group is not given. pass --group or set it in mlshipenv",
				flarc.ErrUsage,
			)
		}

		approval := make([]string, 0, len(flags.Approval))
		for _, a := range flags.Approval {
			parsed, err := apimodels.ParseApprovalStatus(a)
			if err != nil {
				return fmt.Errorf("%w: --approval: %s", flarc.ErrUsage, a)
			}
			approval = append(approval, parsed)
		}

		query := krst.FindModelParameter{
			Group:    group,
			Approval: approval,
		}
		if flags.Since != "" {
			since, err := rfctime.ParseLooseRFC3339(flags.Since)
			if err != nil {
				return fmt.Errorf("%w: --since: %s", flarc.ErrUsage, flags.Since)
			}
			query.Since = ptr.Ref(since.Time())
		}

		found, err := find(ctx, client, query)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(found); err != nil {
			logger.Panicf("fail to dump found versions")
		}
		return nil
	}
}

func RunFindModel(
	ctx context.Context, client krst.Client, query krst.FindModelParameter,
) ([]apimodels.Summary, error) {
	return client.FindModels(ctx, query)
}
