package wait_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	kenv "github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/rest/mock"
	pipeline_wait "github.com/mlship/mlship/cmd/mlship/subcommands/pipeline/wait"
	"github.com/mlship/mlship/cmd/mlship/subcommands/internal/commandline"
	"github.com/mlship/mlship/cmd/mlship/subcommands/logger"
	"github.com/youta-t/flarc"
)

func TestWaitCommand(t *testing.T) {

	detailInStatus := func(status string, stages ...apipipelines.Stage) apipipelines.Detail {
		return apipipelines.Detail{
			Summary: apipipelines.Summary{
				Pipeline:    "fraud-detection-deploy",
				ExecutionId: "exec-0042",
				Status:      status,
			},
			Stages: stages,
		}
	}

	theory := func(
		sequence []apipipelines.Detail,
		flag pipeline_wait.Flag,
		expectedErr error,
		expectedPolls int,
	) func(*testing.T) {
		return func(t *testing.T) {
			client := mock.New(t)

			polls := 0
			poll := func(
				_ context.Context, _ krst.Client, executionId string,
			) (apipipelines.Detail, error) {
				if executionId != "exec-0042" {
					t.Errorf("wrong executionId: %s", executionId)
				}
				if len(sequence) <= polls {
					t.Fatal("polled more often than the scenario expects")
				}
				d := sequence[polls]
				polls += 1
				return d, nil
			}

			if flag.Interval == "" {
				flag.Interval = "1ms"
			}

			testee := pipeline_wait.Task(poll)

			actual := testee(
				context.Background(), logger.Null(), kenv.ShipEnv{}, client,
				commandline.MockCommandline[pipeline_wait.Flag]{
					Stdout_: new(strings.Builder),
					Stderr_: io.Discard,
					Flags_:  flag,
					Args_: map[string][]string{
						pipeline_wait.ARG_EXECUTION_ID: {"exec-0042"},
					},
				},
				[]any{},
			)

			if !errors.Is(actual, expectedErr) {
				t.Errorf(
					"wrong result: (actual, expected) != (%v, %v)",
					actual, expectedErr,
				)
			}
			if polls != expectedPolls {
				t.Errorf(
					"wrong number of polls: (actual, expected) != (%d, %d)",
					polls, expectedPolls,
				)
			}
		}
	}

	t.Run("it polls until the execution succeeds", theory(
		[]apipipelines.Detail{
			detailInStatus(apipipelines.StatusRunning),
			detailInStatus(apipipelines.StatusRunning),
			detailInStatus(apipipelines.StatusSucceeded),
		},
		pipeline_wait.Flag{},
		nil,
		3,
	))

	t.Run("when the execution fails, it returns error", theory(
		[]apipipelines.Detail{
			detailInStatus(apipipelines.StatusRunning),
			detailInStatus(apipipelines.StatusFailed),
		},
		pipeline_wait.Flag{},
		pipeline_wait.ErrExecutionNotSucceeded,
		2,
	))

	t.Run("when the execution is stopped, it returns error", theory(
		[]apipipelines.Detail{
			detailInStatus(apipipelines.StatusStopped),
		},
		pipeline_wait.Flag{},
		pipeline_wait.ErrExecutionNotSucceeded,
		1,
	))

	t.Run("with '--until-gate', it stops when a gate becomes pending", theory(
		[]apipipelines.Detail{
			detailInStatus(apipipelines.StatusRunning),
			detailInStatus(
				apipipelines.StatusRunning,
				apipipelines.Stage{
					Name:   "ApproveDeployment",
					Status: apipipelines.StageInProgress,
					Gate:   &apipipelines.Gate{Token: "gate-token-1"},
				},
			),
		},
		pipeline_wait.Flag{UntilGate: true},
		nil,
		2,
	))

	t.Run("when '--interval' is broken, it fails as usage error", theory(
		[]apipipelines.Detail{},
		pipeline_wait.Flag{Interval: "soon"},
		flarc.ErrUsage,
		0,
	))

	t.Run("when '--timeout' expires, it returns the context error", func(t *testing.T) {
		client := mock.New(t)

		poll := func(
			_ context.Context, _ krst.Client, executionId string,
		) (apipipelines.Detail, error) {
			return detailInStatus(apipipelines.StatusRunning), nil
		}

		testee := pipeline_wait.Task(poll)

		actual := testee(
			context.Background(), logger.Null(), kenv.ShipEnv{}, client,
			commandline.MockCommandline[pipeline_wait.Flag]{
				Stdout_: new(strings.Builder),
				Stderr_: io.Discard,
				Flags_:  pipeline_wait.Flag{Interval: "10ms", Timeout: "30ms"},
				Args_: map[string][]string{
					pipeline_wait.ARG_EXECUTION_ID: {"exec-0042"},
				},
			},
			[]any{},
		)
		if !errors.Is(actual, context.DeadlineExceeded) {
			t.Errorf("wrong result: %v", actual)
		}
	})
}
