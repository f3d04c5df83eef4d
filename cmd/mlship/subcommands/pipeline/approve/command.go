package approve

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

type Flag struct {
	Note   string `flag:"note" metavar:"TEXT" help:"Note left with the gate decision."`
	Reject bool   `flag:"reject" help:"Reject the gate instead of approving it. The execution stops."`
}

type Option struct {
	decide Decide
}

// Decide resolves the pending gate of the execution and returns the
// refreshed execution.
type Decide func(
	ctx context.Context,
	client krst.Client,
	executionId string,
	decision apipipelines.GateDecision,
) (apipipelines.Detail, error)

func WithRunner(decide Decide) func(*Option) *Option {
	return func(opt *Option) *Option {
		opt.decide = decide
		return opt
	}
}

const ARG_EXECUTION_ID = "EXECUTION_ID"

func New(options ...func(*Option) *Option) (flarc.Command, error) {
	option := &Option{
		decide: RunSubmitGateDecision,
	}
	for _, o := range options {
		option = o(option)
	}

	return flarc.NewCommand(
		"Resolve the pending manual approval gate of an execution.",
		Flag{},
		flarc.Args{
			{
				Name: ARG_EXECUTION_ID, Required: true,
				Help: "Id of the execution waiting for a manual approval.",
			},
		},
		common.NewTask(Task(option.decide)),
		flarc.WithDescription(`
Resolve the pending manual approval gate of an execution.

By default the gate is approved and the execution proceeds to its next
stage. With '--reject', the gate is rejected and the execution stops.

The decision is submitted with the token of the gate currently pending.
If the gate changed in between (say, someone else resolved it first),
the control plane rejects the stale token and this command fails.
`),
	)
}

func Task(decide Decide) common.Task[Flag] {
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

		execution, err := client.GetExecution(ctx, executionId)
		if err != nil {
			return fmt.Errorf("%w: execution:%s", err, executionId)
		}

		stage, ok := execution.PendingGate()
		if !ok {
			return fmt.Errorf(
				"execution:%s has no pending manual approval gate (status: %s)",
				executionId, execution.Status,
			)
		}

		decision := apipipelines.GateDecision{
			Token:   stage.Gate.Token,
			Approve: !flags.Reject,
			Note:    flags.Note,
		}

		updated, err := decide(ctx, client, executionId, decision)
		if err != nil {
			return fmt.Errorf("%w: execution:%s", err, executionId)
		}

		verdict := "approved"
		if flags.Reject {
			verdict = "rejected"
		}
		logger.Printf("gate at stage %s of execution %s is %s", stage.Name, executionId, verdict)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(updated); err != nil {
			logger.Panicf("fail to dump the execution")
		}
		return nil
	}
}

func RunSubmitGateDecision(
	ctx context.Context, client krst.Client,
	executionId string, decision apipipelines.GateDecision,
) (apipipelines.Detail, error) {
	return client.SubmitGateDecision(ctx, executionId, decision)
}
