package wait

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	pb "github.com/cheggaaa/pb/v3"
	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/mlship/mlship/pkg/loop"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Interval  string `flag:"interval" metavar:"DURATION" help:"Polling interval. Default: 10s."`
	Timeout   string `flag:"timeout" metavar:"DURATION" help:"Give up waiting after this duration. Default: wait forever."`
	UntilGate bool   `flag:"until-gate" help:"Also stop waiting when a manual approval gate becomes pending."`
}

// ErrExecutionNotSucceeded is returned when the execution reaches a
// terminal status other than Succeeded.
var ErrExecutionNotSucceeded = fmt.Errorf("execution did not succeed")

type Option struct {
	poll Poll
}

type Poll func(
	ctx context.Context,
	client krst.Client,
	executionId string,
) (apipipelines.Detail, error)

func WithPoll(poll Poll) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.poll = poll
		return opt
	}
}

const ARG_EXECUTION_ID = "EXECUTION_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		poll: RunPollExecution,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Wait until an execution reaches a terminal status.",
		Flag{
			Interval: "10s",
		},
		flarc.Args{
			{
				Name: ARG_EXECUTION_ID, Required: true,
				Help: "Id of the execution to be waited for.",
			},
		},
		common.NewTask(Task(option.poll)),
		flarc.WithDescription(`
Wait until an execution reaches a terminal status, polling the control
plane periodically. Progress of stages is shown on stderr.

This command exits with an error when the execution ends as Failed or
Stopped, so it can guard the next step of a script.

With '--until-gate', waiting also stops (successfully) when a manual
approval gate becomes pending, so you can approve it:

	{{ .Command }} --until-gate EXECUTION_ID && mlship pipeline approve EXECUTION_ID
`),
	)
}

func Task(poll Poll) common.Task[Flag] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		shipEnv env.ShipEnv,
		client krst.Client,
		cl flarc.Commandline[Flag],
		params []any,
	) error {
		flags := cl.Flags()
		executionId := cl.Args()[ARG_EXECUTION_ID][0]

		interval, err := time.ParseDuration(flags.Interval)
		if err != nil || interval <= 0 {
			return fmt.Errorf("%w: --interval: %s", flarc.ErrUsage, flags.Interval)
		}

		if flags.Timeout != "" {
			timeout, err := time.ParseDuration(flags.Timeout)
			if err != nil || timeout <= 0 {
				return fmt.Errorf("%w: --timeout: %s", flarc.ErrUsage, flags.Timeout)
			}
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		bar := pb.New64(0)
		bar.SetWriter(cl.Stderr())
		bar.Start()
		defer bar.Finish()

		last, err := loop.Start(
			ctx,
			apipipelines.Detail{},
			func(ctx context.Context, _ apipipelines.Detail) (apipipelines.Detail, loop.Next) {
				detail, err := poll(ctx, client, executionId)
				if err != nil {
					return detail, loop.Break(err)
				}

				bar.SetTotal(int64(len(detail.Stages)))
				bar.SetCurrent(countSucceeded(detail))
				if name, ok := inProgressStage(detail); ok {
					bar.Set("prefix", name+": ")
				}

				if flags.UntilGate {
					if stage, ok := detail.PendingGate(); ok {
						bar.Set("prefix", stage.Name+": gate pending ")
						return detail, loop.Break(nil)
					}
				}

				if detail.Done() {
					return detail, loop.Break(nil)
				}
				return detail, loop.Continue(interval)
			},
		)
		bar.Finish()
		if err != nil {
			return fmt.Errorf("%w: execution:%s", err, executionId)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(last); err != nil {
			logger.Panicf("fail to dump the execution")
		}

		switch last.Status {
		case apipipelines.StatusFailed, apipipelines.StatusStopped:
			return fmt.Errorf("%w: execution:%s is %s", ErrExecutionNotSucceeded, executionId, last.Status)
		}

		if stage, ok := last.PendingGate(); ok {
			logger.Printf(
				"execution %s is waiting for a manual approval at stage %s. Resolve it with `mlship pipeline approve %s`",
				executionId, stage.Name, executionId,
			)
		}
		return nil
	}
}

func countSucceeded(detail apipipelines.Detail) int64 {
	n := int64(0)
	for _, s := range detail.Stages {
		if s.Status == apipipelines.StageSucceeded {
			n += 1
		}
	}
	return n
}

func inProgressStage(detail apipipelines.Detail) (string, bool) {
	for _, s := range detail.Stages {
		if s.Status == apipipelines.StageInProgress {
			return s.Name, true
		}
	}
	return "", false
}

func RunPollExecution(
	ctx context.Context, client krst.Client, executionId string,
) (apipipelines.Detail, error) {
	return client.GetExecution(ctx, executionId)
}
