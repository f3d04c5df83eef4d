package wait

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	apiendpoints "github.com/mlship/mlship/api/types/endpoints"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/mlship/mlship/pkg/loop"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Interval string `flag:"interval" metavar:"DURATION" help:"Polling interval. Default: 10s."`
	Timeout  string `flag:"timeout" metavar:"DURATION" help:"Give up waiting after this duration. Default: wait forever."`
}

// ErrEndpointNotInService is returned when the endpoint settles in a
// status other than InService.
var ErrEndpointNotInService = fmt.Errorf("endpoint is not in service")

type Option struct {
	poll Poll
}

type Poll func(
	ctx context.Context,
	client krst.Client,
	name string,
) (apiendpoints.Detail, error)

func WithPoll(poll Poll) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.poll = poll
		return opt
	}
}

const ARG_ENDPOINT = "ENDPOINT"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		poll: RunPollEndpoint,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Wait until an endpoint settles.",
		Flag{
			Interval: "10s",
		},
		flarc.Args{
			{
				Name: ARG_ENDPOINT, Required: false,
				Help: "Name of the endpoint to be waited for. Default: the staging endpoint in mlshipenv.",
			},
		},
		common.NewTask(Task(option.poll)),
		flarc.WithDescription(`
Wait until an endpoint leaves its transitional status (Creating or
Updating), polling the control plane periodically.

This command exits with an error when the endpoint settles as Failed or
OutOfService, so it can guard the next step of a script.
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

		last, err := loop.Start(
			ctx,
			apiendpoints.Detail{},
			func(ctx context.Context, _ apiendpoints.Detail) (apiendpoints.Detail, loop.Next) {
				detail, err := poll(ctx, client, name)
				if err != nil {
					return detail, loop.Break(err)
				}
				if detail.Settled() {
					return detail, loop.Break(nil)
				}
				logger.Printf("endpoint %s is %s ...", name, detail.Status)
				return detail, loop.Continue(interval)
			},
		)
		if err != nil {
			return fmt.Errorf("%w: endpoint:%s", err, name)
		}

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(last); err != nil {
			logger.Panicf("fail to dump the endpoint")
		}

		if last.Status != apiendpoints.StatusInService {
			return fmt.Errorf(
				"%w: endpoint:%s is %s: %s",
				ErrEndpointNotInService, name, last.Status, last.FailureReason,
			)
		}
		return nil
	}
}

func RunPollEndpoint(
	ctx context.Context, client krst.Client, name string,
) (apiendpoints.Detail, error) {
	return client.GetEndpoint(ctx, name)
}
