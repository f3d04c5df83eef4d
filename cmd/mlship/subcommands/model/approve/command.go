package approve

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	apimodels "github.com/mlship/mlship/api/types/models"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Group string `flag:"group" alias:"g" metavar:"GROUP" help:"Model package group the version belongs to. Default: the group in mlshipenv."`
	Note  string `flag:"note" metavar:"TEXT" help:"Note left with the approval status change."`
}

type Option struct {
	change Change
}

type Change func(
	ctx context.Context,
	client krst.Client,
	group string,
	version int,
	change apimodels.ApprovalChange,
) (apimodels.Detail, error)

func WithRunner(change Change) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.change = change
		return opt
	}
}

const ARG_VERSION = "VERSION"

// New builds the command updating a version's approval status to the
// given one, ApprovalApproved or ApprovalRejected.
func New(status string, options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		change: RunChangeApproval,
	}
	for _, o := range options {
		option = o(option)
	}

	verb := strings.ToLower(status)

	return flarc.NewCommand(
		fmt.Sprintf("Mark a model package version %s.", status),
		Flag{},
		flarc.Args{
			{
				Name: ARG_VERSION, Required: true,
				Help: fmt.Sprintf("Version number of the model package to be %s.", verb),
			},
		},
		common.NewTask(Task(status, option.change)),
		flarc.WithDescription(fmt.Sprintf(`
Mark a model package version %s.

Approving a version is the event which starts the deployment pipeline
on the vendor side. This command only updates the model registry; track
the pipeline execution it triggers with "pipeline find" and "pipeline wait".
`, verb)),
	)
}

func Task(status string, change Change) common.Task[Flag] {
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

		rawVersion := cl.Args()[ARG_VERSION][0]
		version, err := strconv.Atoi(rawVersion)
		if err != nil {
			return fmt.Errorf("%w: VERSION should be an integer: %s", flarc.ErrUsage, rawVersion)
		}

		detail, err := change(ctx, client, group, version, apimodels.ApprovalChange{
			Status: status,
			Note:   flags.Note,
		})
		if err != nil {
			return fmt.Errorf("%w: model package:%s:%d", err, group, version)
		}

		logger.Printf("model package %s is now %s", detail.Id(), detail.ApprovalStatus)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(detail); err != nil {
			logger.Panicf("fail to dump the model package version")
		}
		return nil
	}
}

func RunChangeApproval(
	ctx context.Context, client krst.Client,
	group string, version int, change apimodels.ApprovalChange,
) (apimodels.Detail, error) {
	return client.SetModelApproval(ctx, group, version, change)
}
