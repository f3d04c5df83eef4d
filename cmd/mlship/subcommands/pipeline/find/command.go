package find

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mlship/mlship/api/types/misc/rfctime"
	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	ptr "github.com/mlship/mlship/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Pipeline      []string `flag:"pipeline" alias:"p" metavar:"NAME" help:"Find executions of this pipeline. Repeatable."`
	Status        []string `flag:"status" alias:"s" metavar:"running|succeeded|failed|stopping|stopped" help:"Find executions in this status. Repeatable."`
	Trigger       string   `flag:"trigger" metavar:"SourcePush|ModelApproval|Manual" help:"Find executions started by this trigger type."`
	TriggerDetail string   `flag:"trigger-detail" metavar:"DETAIL" help:"Find executions whose trigger detail is this. For ModelApproval, GROUP:VERSION of the model package."`
	Since         string   `flag:"since" metavar:"DATETIME" help:"Find executions only started at this time or later. RFC3339, abbreviatable."`
}

type Option struct {
	find Find
}

type Find func(
	ctx context.Context,
	client krst.Client,
	query krst.FindExecutionParameter,
) ([]apipipelines.Summary, error)

func WithFind(find Find) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.find = find
		return opt
	}
}

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		find: RunFindExecution,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Display pipeline executions that satisfy all specified conditions.",
		Flag{},
		flarc.Args{},
		common.NewTask(Task(option.find)),
		flarc.WithDescription(`
Display pipeline executions that satisfy all specified conditions.

If '--pipeline' or '--status' are passed multiple times, executions
matching any of the values are displayed.

Example
-------

Finding running executions of the deploy pipeline:

	{{ .Command }} --pipeline model-deploy --status running

Finding the execution triggered by approving model package "fraud-detector:12":

	{{ .Command }} --trigger ModelApproval --trigger-detail fraud-detector:12
`),
	)
}

func parseStatus(s string) (string, error) {
	switch strings.ToLower(s) {
	case "running":
		return apipipelines.StatusRunning, nil
	case "succeeded":
		return apipipelines.StatusSucceeded, nil
	case "failed":
		return apipipelines.StatusFailed, nil
	case "stopping":
		return apipipelines.StatusStopping, nil
	case "stopped":
		return apipipelines.StatusStopped, nil
	}
	return "", fmt.Errorf("unknown execution status: %s", s)
}

func parseTrigger(s string) (string, error) {
	switch strings.ToLower(s) {
	case "sourcepush":
		return apipipelines.TriggerSourcePush, nil
	case "modelapproval":
		return apipipelines.TriggerModelApproval, nil
	case "manual":
		return apipipelines.TriggerManual, nil
	}
	return "", fmt.Errorf("unknown trigger type: %s", s)
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

		status := make([]string, 0, len(flags.Status))
		for _, s := range flags.Status {
			parsed, err := parseStatus(s)
			if err != nil {
				return fmt.Errorf("%w: --status: %s", flarc.ErrUsage, s)
			}
			status = append(status, parsed)
		}

		query := krst.FindExecutionParameter{
			Pipeline:      flags.Pipeline,
			Status:        status,
			TriggerDetail: flags.TriggerDetail,
		}

		if flags.Trigger != "" {
			trigger, err := parseTrigger(flags.Trigger)
			if err != nil {
				return fmt.Errorf("%w: --trigger: %s", flarc.ErrUsage, flags.Trigger)
			}
			query.TriggerType = trigger
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
			logger.Panicf("fail to dump found executions")
		}
		return nil
	}
}

func RunFindExecution(
	ctx context.Context, client krst.Client, query krst.FindExecutionParameter,
) ([]apipipelines.Summary, error) {
	return client.FindExecutions(ctx, query)
}
