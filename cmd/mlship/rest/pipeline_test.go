package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mlship/mlship/api/types/misc/rfctime"
	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	kprof "github.com/mlship/mlship/cmd/mlship/config/profiles"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/pkg/cmp"
	"github.com/mlship/mlship/pkg/utils/try"
)

func TestFindExecutions(t *testing.T) {
	t.Run("it sends query parameters and returns found executions", func(t *testing.T) {
		expectedResponse := []apipipelines.Summary{
			{
				Pipeline:    "fraud-detection-deploy",
				ExecutionId: "exec-0042",
				Status:      apipipelines.StatusRunning,
				Trigger: apipipelines.Trigger{
					Type:   apipipelines.TriggerModelApproval,
					Detail: "fraud-detector:12",
				},
				StartedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:01:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:05:00+00:00",
				)).OrFatal(t),
			},
		}

		var request *http.Request
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := kprof.Profile{ApiRoot: server.URL}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		actualResponse := try.To(testee.FindExecutions(
			context.Background(),
			krst.FindExecutionParameter{
				Pipeline:      []string{"fraud-detection-deploy"},
				Status:        []string{apipipelines.StatusRunning},
				TriggerType:   apipipelines.TriggerModelApproval,
				TriggerDetail: "fraud-detector:12",
			},
		)).OrFatal(t)

		if !cmp.SliceEqWith(
			actualResponse, expectedResponse,
			func(a, x apipipelines.Summary) bool { return a.Equal(x) },
		) {
			t.Errorf(
				"response is not equal (actual,expected): %v,%v",
				actualResponse, expectedResponse,
			)
		}

		if request.URL.Path != "/executions" {
			t.Errorf("request path is wrong: %s", request.URL.Path)
		}
		q := request.URL.Query()
		if q.Get("pipeline") != "fraud-detection-deploy" {
			t.Errorf("query pipeline is wrong: %s", q.Get("pipeline"))
		}
		if q.Get("status") != apipipelines.StatusRunning {
			t.Errorf("query status is wrong: %s", q.Get("status"))
		}
		if q.Get("triggerType") != apipipelines.TriggerModelApproval {
			t.Errorf("query triggerType is wrong: %s", q.Get("triggerType"))
		}
		if q.Get("triggerDetail") != "fraud-detector:12" {
			t.Errorf("query triggerDetail is wrong: %s", q.Get("triggerDetail"))
		}
	})
}

func TestGetExecution(t *testing.T) {
	t.Run("when server returns an execution, it returns that as is", func(t *testing.T) {
		expectedResponse := apipipelines.Detail{
			Summary: apipipelines.Summary{
				Pipeline:    "fraud-detection-deploy",
				ExecutionId: "exec-0042",
				Status:      apipipelines.StatusRunning,
				Trigger: apipipelines.Trigger{
					Type:   apipipelines.TriggerModelApproval,
					Detail: "fraud-detector:12",
				},
				StartedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:01:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:20:00+00:00",
				)).OrFatal(t),
			},
			Stages: []apipipelines.Stage{
				{
					Name:   "DeployStaging",
					Status: apipipelines.StageSucceeded,
					Actions: []apipipelines.Action{
						{Name: "deploy", Status: apipipelines.StageSucceeded},
					},
				},
				{
					Name:   "ApproveDeployment",
					Status: apipipelines.StageInProgress,
					Actions: []apipipelines.Action{
						{Name: "approval", Status: apipipelines.StageInProgress},
					},
					Gate: &apipipelines.Gate{
						Token: "gate-token-1",
						RequestedAt: try.To(rfctime.ParseRFC3339DateTime(
							"2026-08-25T11:18:00+00:00",
						)).OrFatal(t),
					},
				},
			},
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/executions/exec-0042" {
				t.Errorf("request path is wrong: %s", r.URL.Path)
			}
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := kprof.Profile{ApiRoot: server.URL}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		actualResponse := try.To(
			testee.GetExecution(context.Background(), "exec-0042"),
		).OrFatal(t)

		if !actualResponse.Equal(expectedResponse) {
			t.Errorf(
				"response is not equal (actual,expected): %v,%v",
				actualResponse, expectedResponse,
			)
		}

		stage, ok := actualResponse.PendingGate()
		if !ok || stage.Name != "ApproveDeployment" {
			t.Errorf("pending gate is not detected: %v, %v", stage, ok)
		}
	})
}

func TestSubmitGateDecision(t *testing.T) {
	t.Run("it PUTs the decision with the gate token", func(t *testing.T) {
		expectedResponse := apipipelines.Detail{
			Summary: apipipelines.Summary{
				Pipeline:    "fraud-detection-deploy",
				ExecutionId: "exec-0042",
				Status:      apipipelines.StatusRunning,
				StartedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:01:00+00:00",
				)).OrFatal(t),
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:30:00+00:00",
				)).OrFatal(t),
			},
			Stages: []apipipelines.Stage{
				{Name: "DeployStaging", Status: apipipelines.StageSucceeded, Actions: []apipipelines.Action{}},
				{Name: "ApproveDeployment", Status: apipipelines.StageSucceeded, Actions: []apipipelines.Action{}},
				{Name: "DeployProd", Status: apipipelines.StageInProgress, Actions: []apipipelines.Action{}},
			},
		}

		var request *http.Request
		var requestBody []byte
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			request = r
			requestBody = try.To(io.ReadAll(r.Body)).OrFatal(t)
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(try.To(json.Marshal(expectedResponse)).OrFatal(t))
		}))
		defer server.Close()

		profile := kprof.Profile{ApiRoot: server.URL}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		decision := apipipelines.GateDecision{
			Token: "gate-token-1", Approve: true, Note: "staging looks fine",
		}
		actualResponse := try.To(testee.SubmitGateDecision(
			context.Background(), "exec-0042", decision,
		)).OrFatal(t)

		if !actualResponse.Equal(expectedResponse) {
			t.Errorf(
				"response is not equal (actual,expected): %v,%v",
				actualResponse, expectedResponse,
			)
		}

		if request.Method != http.MethodPut {
			t.Errorf("request is not PUT (actual method = %s)", request.Method)
		}
		if request.URL.Path != "/executions/exec-0042/gate" {
			t.Errorf("request path is wrong: %s", request.URL.Path)
		}
		if request.Header.Get("Idempotency-Key") == "" {
			t.Errorf("Idempotency-Key header is not set")
		}

		actualDecision := apipipelines.GateDecision{}
		if err := json.Unmarshal(requestBody, &actualDecision); err != nil {
			t.Fatal(err)
		}
		if actualDecision != decision {
			t.Errorf(
				"request body is not equal (actual,expected): %v,%v",
				actualDecision, decision,
			)
		}
	})

	t.Run("when the gate token is stale, it returns error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"reason": "gate token is stale", "advice": "fetch the execution again"}`))
		}))
		defer server.Close()

		profile := kprof.Profile{ApiRoot: server.URL}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		_, err := testee.SubmitGateDecision(
			context.Background(), "exec-0042",
			apipipelines.GateDecision{Token: "stale-token", Approve: true},
		)
		if err == nil {
			t.Errorf("no error for stale gate token")
		}
	})
}
