package approve_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/mlship/mlship/api/types/misc/rfctime"
	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	kenv "github.com/mlship/mlship/cmd/mlship/env"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/cmd/mlship/rest/mock"
	pipeline_approve "github.com/mlship/mlship/cmd/mlship/subcommands/pipeline/approve"
	"github.com/mlship/mlship/cmd/mlship/subcommands/internal/commandline"
	"github.com/mlship/mlship/cmd/mlship/subcommands/logger"
	"github.com/mlship/mlship/pkg/utils/try"
)

func TestApproveCommand(t *testing.T) {

	executionWithGate := func(t *testing.T) apipipelines.Detail {
		return apipipelines.Detail{
			Summary: apipipelines.Summary{
				Pipeline:    "fraud-detection-deploy",
				ExecutionId: "exec-0042",
				Status:      apipipelines.StatusRunning,
				StartedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:01:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:20:00+00:00",
				)).OrFatal(t),
			},
			Stages: []apipipelines.Stage{
				{Name: "DeployStaging", Status: apipipelines.StageSucceeded},
				{
					Name:   "ApproveDeployment",
					Status: apipipelines.StageInProgress,
					Gate: &apipipelines.Gate{
						Token: "gate-token-1",
						RequestedAt: try.To(rfctime.ParseRFC3339DateTime(
							"2026-08-25T11:18:00+00:00",
						)).OrFatal(t),
					},
				},
			},
		}
	}

	t.Run("when the execution has a pending gate, it submits the decision with its token", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetExecution = func(
			_ context.Context, executionId string,
		) (apipipelines.Detail, error) {
			return executionWithGate(t), nil
		}

		decided := []apipipelines.GateDecision{}
		decide := func(
			_ context.Context, _ krst.Client,
			executionId string, decision apipipelines.GateDecision,
		) (apipipelines.Detail, error) {
			if executionId != "exec-0042" {
				t.Errorf("wrong executionId: %s", executionId)
			}
			decided = append(decided, decision)
			return executionWithGate(t), nil
		}

		testee := pipeline_approve.Task(decide)

		actual := testee(
			context.Background(), logger.Null(), kenv.ShipEnv{}, client,
			commandline.MockCommandline[pipeline_approve.Flag]{
				Stdout_: new(strings.Builder),
				Stderr_: io.Discard,
				Flags_:  pipeline_approve.Flag{Note: "staging looks fine"},
				Args_: map[string][]string{
					pipeline_approve.ARG_EXECUTION_ID: {"exec-0042"},
				},
			},
			[]any{},
		)
		if actual != nil {
			t.Fatal(actual)
		}

		expected := apipipelines.GateDecision{
			Token: "gate-token-1", Approve: true, Note: "staging looks fine",
		}
		if len(decided) != 1 || decided[0] != expected {
			t.Errorf(
				"wrong decision: (actual, expected) != (%+v, %+v)",
				decided, expected,
			)
		}
	})

	t.Run("when '--reject' is passed, the gate is rejected", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetExecution = func(
			_ context.Context, executionId string,
		) (apipipelines.Detail, error) {
			return executionWithGate(t), nil
		}

		decided := []apipipelines.GateDecision{}
		decide := func(
			_ context.Context, _ krst.Client,
			executionId string, decision apipipelines.GateDecision,
		) (apipipelines.Detail, error) {
			decided = append(decided, decision)
			return executionWithGate(t), nil
		}

		testee := pipeline_approve.Task(decide)

		actual := testee(
			context.Background(), logger.Null(), kenv.ShipEnv{}, client,
			commandline.MockCommandline[pipeline_approve.Flag]{
				Stdout_: new(strings.Builder),
				Stderr_: io.Discard,
				Flags_:  pipeline_approve.Flag{Reject: true},
				Args_: map[string][]string{
					pipeline_approve.ARG_EXECUTION_ID: {"exec-0042"},
				},
			},
			[]any{},
		)
		if actual != nil {
			t.Fatal(actual)
		}

		expected := apipipelines.GateDecision{
			Token: "gate-token-1", Approve: false,
		}
		if len(decided) != 1 || decided[0] != expected {
			t.Errorf(
				"wrong decision: (actual, expected) != (%+v, %+v)",
				decided, expected,
			)
		}
	})

	t.Run("when the execution has no pending gate, it fails without deciding", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetExecution = func(
			_ context.Context, executionId string,
		) (apipipelines.Detail, error) {
			noGate := executionWithGate(t)
			noGate.Stages[1].Gate = nil
			return noGate, nil
		}

		decide := func(
			_ context.Context, _ krst.Client,
			executionId string, decision apipipelines.GateDecision,
		) (apipipelines.Detail, error) {
			t.Fatal("decision is submitted even though no gate is pending")
			return apipipelines.Detail{}, nil
		}

		testee := pipeline_approve.Task(decide)

		actual := testee(
			context.Background(), logger.Null(), kenv.ShipEnv{}, client,
			commandline.MockCommandline[pipeline_approve.Flag]{
				Stdout_: new(strings.Builder),
				Stderr_: io.Discard,
				Flags_:  pipeline_approve.Flag{},
				Args_: map[string][]string{
					pipeline_approve.ARG_EXECUTION_ID: {"exec-0042"},
				},
			},
			[]any{},
		)
		if actual == nil {
			t.Errorf("no error even though no gate is pending")
		}
	})

	t.Run("when the decision is rejected by server, the error is returned", func(t *testing.T) {
		client := mock.New(t)
		client.Impl.GetExecution = func(
			_ context.Context, executionId string,
		) (apipipelines.Detail, error) {
			return executionWithGate(t), nil
		}

		fakeErr := errors.New("fake error")
		decide := func(
			_ context.Context, _ krst.Client,
			executionId string, decision apipipelines.GateDecision,
		) (apipipelines.Detail, error) {
			return apipipelines.Detail{}, fakeErr
		}

		testee := pipeline_approve.Task(decide)

		actual := testee(
			context.Background(), logger.Null(), kenv.ShipEnv{}, client,
			commandline.MockCommandline[pipeline_approve.Flag]{
				Stdout_: new(strings.Builder),
				Stderr_: io.Discard,
				Flags_:  pipeline_approve.Flag{},
				Args_: map[string][]string{
					pipeline_approve.ARG_EXECUTION_ID: {"exec-0042"},
				},
			},
			[]any{},
		)
		if !errors.Is(actual, fakeErr) {
			t.Errorf(
				"wrong result: (actual, expected) != (%v, %v)",
				actual, fakeErr,
			)
		}
	})
}
