package promote

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	apiendpoints "github.com/mlship/mlship/api/types/endpoints"
	apimodels "github.com/mlship/mlship/api/types/models"
	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	"github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	"github.com/mlship/mlship/pkg/loop"
	ptr "github.com/mlship/mlship/pkg/utils/pointer"
	"github.com/youta-t/flarc"
)

type Flag struct {
	Group    string `flag:"group" alias:"g" metavar:"GROUP" help:"Model package group the version belongs to. Default: the group in mlshipenv."`
	Pipeline string `flag:"pipeline" alias:"p" metavar:"NAME" help:"Deploy pipeline expected to pick the approval up. Default: the deploy pipeline in mlshipenv."`
	Note     string `flag:"note" metavar:"TEXT" help:"Note left with the approval and the gate decision."`
	Yes      bool   `flag:"yes" alias:"y" help:"Also approve the production gate. Without this, promotion stops at the gate."`
	Interval string `flag:"interval" metavar:"DURATION" help:"Polling interval. Default: 10s."`
	Timeout  string `flag:"timeout" metavar:"DURATION" help:"Give up waiting after this duration. Default: 1h."`
}

// ErrPromotionFailed is returned when the deployment the promotion
// kicked off does not reach its goal.
var ErrPromotionFailed = fmt.Errorf("promotion failed")

const ARG_VERSION = "VERSION"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Approve a model package version and follow its deployment.",
		Flag{
			Interval: "10s",
			Timeout:  "1h",
		},
		flarc.Args{
			{
				Name: ARG_VERSION, Required: true,
				Help: "Version number of the model package to be promoted.",
			},
		},
		common.NewTask(Task()),
		flarc.WithDescription(`
Approve a model package version and follow the deployment it triggers,
end to end:

1. mark the version Approved in the model registry,
2. find the pipeline execution triggered by the approval,
3. wait until the staging endpoint serves the new version,
4. resolve the production gate ('--yes' approves it; otherwise
   promotion stops there and tells you how to resume),
5. wait until the execution succeeds and the production endpoint
   is in service.

Progress is logged to stderr. The command exits with an error as soon
as any of the steps fails.

Example
-------

Promote version 12 up to the production gate, smoke-test staging, then
let the gate through:

	{{ .Command }} 12
	mlship endpoint invoke --data '{"instances": [[1.0]]}'
	{{ .Command }} 12 --yes
`),
	)
}

func Task() common.Task[Flag] {
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

		interval, err := time.ParseDuration(flags.Interval)
		if err != nil || interval <= 0 {
			return fmt.Errorf("%w: --interval: %s", flarc.ErrUsage, flags.Interval)
		}
		timeout, err := time.ParseDuration(flags.Timeout)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("%w: --timeout: %s", flarc.ErrUsage, flags.Timeout)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		// step 1: approve the version. A version already approved is
		// fine: the pipeline the approval triggered is found in step 2.
		approvedAt := time.Now()
		model, err := client.GetModel(ctx, group, version)
		if err != nil {
			return fmt.Errorf("%w: model package:%s:%d", err, group, version)
		}
		if model.ApprovalStatus == apimodels.ApprovalApproved {
			approvedAt = model.UpdatedAt.Time()
			logger.Printf("model package %s is already approved. following its deployment", model.Id())
		} else {
			model, err = client.SetModelApproval(ctx, group, version, apimodels.ApprovalChange{
				Status: apimodels.ApprovalApproved,
				Note:   flags.Note,
			})
			if err != nil {
				return fmt.Errorf("%w: model package:%s:%d", err, group, version)
			}
			logger.Printf("model package %s is now %s", model.Id(), model.ApprovalStatus)
		}

		// step 2: the control plane starts the execution asynchronously.
		execution, err := findTriggeredExecution(
			ctx, client, flags.Pipeline, shipEnv, model, approvedAt, interval,
		)
		if err != nil {
			return err
		}
		logger.Printf("deployment started: execution %s of pipeline %s", execution.ExecutionId, execution.Pipeline)

		// step 3: follow the execution up to the production gate.
		detail, err := waitExecution(ctx, client, execution.ExecutionId, interval, true)
		if err != nil {
			return err
		}

		if stage, pending := detail.PendingGate(); pending {
			if shipEnv.StagingEndpoint != "" {
				if err := waitEndpoint(ctx, logger, client, shipEnv.StagingEndpoint, interval); err != nil {
					return err
				}
				logger.Printf("staging endpoint %s is in service", shipEnv.StagingEndpoint)
			}

			if !flags.Yes {
				logger.Printf(
					"execution %s is waiting for the production gate at stage %s.",
					detail.ExecutionId, stage.Name,
				)
				logger.Printf(
					"smoke-test staging (`mlship endpoint invoke`), then resume with `mlship promote %d --yes` or resolve the gate with `mlship pipeline approve %s`",
					version, detail.ExecutionId,
				)
				return nil
			}

			// step 4: let the gate through.
			detail, err = client.SubmitGateDecision(ctx, detail.ExecutionId, apipipelines.GateDecision{
				Token:   stage.Gate.Token,
				Approve: true,
				Note:    flags.Note,
			})
			if err != nil {
				return fmt.Errorf("%w: execution:%s", err, execution.ExecutionId)
			}
			logger.Printf("production gate at stage %s is approved", stage.Name)

			// step 5: follow the execution to its end.
			detail, err = waitExecution(ctx, client, execution.ExecutionId, interval, false)
			if err != nil {
				return err
			}
		}

		if detail.Status != apipipelines.StatusSucceeded {
			return fmt.Errorf(
				"%w: execution:%s is %s", ErrPromotionFailed, detail.ExecutionId, detail.Status,
			)
		}

		if shipEnv.ProductionEndpoint != "" {
			if err := waitEndpoint(ctx, logger, client, shipEnv.ProductionEndpoint, interval); err != nil {
				return err
			}
			logger.Printf("production endpoint %s is in service", shipEnv.ProductionEndpoint)
		}

		logger.Printf("model package %s is promoted to production", model.Id())
		return nil
	}
}

// findTriggeredExecution polls for the execution the approval of model
// triggered. The trigger detail of such an execution is the
// "GROUP:VERSION" of the approved version.
func findTriggeredExecution(
	ctx context.Context,
	client krst.Client,
	pipeline string,
	shipEnv env.ShipEnv,
	model apimodels.Detail,
	approvedAt time.Time,
	interval time.Duration,
) (apipipelines.Summary, error) {
	if pipeline == "" {
		pipeline = shipEnv.DeployPipeline
	}

	query := krst.FindExecutionParameter{
		TriggerType:   apipipelines.TriggerModelApproval,
		TriggerDetail: model.Id(),
		Since:         ptr.Ref(approvedAt),
	}
	if pipeline != "" {
		query.Pipeline = []string{pipeline}
	}

	found, err := loop.Start(
		ctx,
		apipipelines.Summary{},
		func(ctx context.Context, _ apipipelines.Summary) (apipipelines.Summary, loop.Next) {
			executions, err := client.FindExecutions(ctx, query)
			if err != nil {
				return apipipelines.Summary{}, loop.Break(err)
			}
			if len(executions) == 0 {
				return apipipelines.Summary{}, loop.Continue(interval)
			}
			return executions[0], loop.Break(nil)
		},
	)
	if err != nil {
		return apipipelines.Summary{}, fmt.Errorf(
			"%w: no execution triggered by approving %s", err, model.Id(),
		)
	}
	return found, nil
}

func waitExecution(
	ctx context.Context,
	client krst.Client,
	executionId string,
	interval time.Duration,
	untilGate bool,
) (apipipelines.Detail, error) {
	detail, err := loop.Start(
		ctx,
		apipipelines.Detail{},
		func(ctx context.Context, _ apipipelines.Detail) (apipipelines.Detail, loop.Next) {
			d, err := client.GetExecution(ctx, executionId)
			if err != nil {
				return d, loop.Break(err)
			}
			if untilGate {
				if _, pending := d.PendingGate(); pending {
					return d, loop.Break(nil)
				}
			}
			if d.Done() {
				return d, loop.Break(nil)
			}
			return d, loop.Continue(interval)
		},
	)
	if err != nil {
		return detail, fmt.Errorf("%w: execution:%s", err, executionId)
	}
	switch detail.Status {
	case apipipelines.StatusFailed, apipipelines.StatusStopped:
		return detail, fmt.Errorf(
			"%w: execution:%s is %s", ErrPromotionFailed, executionId, detail.Status,
		)
	}
	return detail, nil
}

func waitEndpoint(
	ctx context.Context,
	logger *log.Logger,
	client krst.Client,
	name string,
	interval time.Duration,
) error {
	last, err := loop.Start(
		ctx,
		apiendpoints.Detail{},
		func(ctx context.Context, _ apiendpoints.Detail) (apiendpoints.Detail, loop.Next) {
			d, err := client.GetEndpoint(ctx, name)
			if err != nil {
				return d, loop.Break(err)
			}
			if d.Settled() {
				return d, loop.Break(nil)
			}
			logger.Printf("endpoint %s is %s ...", name, d.Status)
			return d, loop.Continue(interval)
		},
	)
	if err != nil {
		return fmt.Errorf("%w: endpoint:%s", err, name)
	}
	if last.Status != apiendpoints.StatusInService {
		return fmt.Errorf(
			"%w: endpoint:%s is %s: %s",
			ErrPromotionFailed, name, last.Status, last.FailureReason,
		)
	}
	return nil
}
