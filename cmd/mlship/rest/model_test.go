package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mlship/mlship/api/types/misc/rfctime"
	apimodels "github.com/mlship/mlship/api/types/models"
	kprof "github.com/mlship/mlship/cmd/mlship/config/profiles"
	krst "github.com/mlship/mlship/cmd/mlship/rest"
	"github.com/mlship/mlship/pkg/cmp"
	ptr "github.com/mlship/mlship/pkg/utils/pointer"
	"github.com/mlship/mlship/pkg/utils/try"
)

func TestFindModels(t *testing.T) {
	t.Run("it sends query parameters and returns found versions", func(t *testing.T) {
		expectedResponse := []apimodels.Summary{
			{
				Group: "fraud-detector", Version: 11,
				Status:         apimodels.StatusCompleted,
				ApprovalStatus: apimodels.ApprovalApproved,
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-20T09:00:00+00:00",
				)).OrFatal(t),
			},
			{
				Group: "fraud-detector", Version: 12,
				Status:         apimodels.StatusCompleted,
				ApprovalStatus: apimodels.ApprovalPending,
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-24T10:30:00+00:00",
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

		since := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
		actualResponse := try.To(testee.FindModels(
			context.Background(),
			krst.FindModelParameter{
				Group:    "fraud-detector",
				Approval: []string{apimodels.ApprovalApproved, apimodels.ApprovalPending},
				Since:    ptr.Ref(since),
			},
		)).OrFatal(t)

		if !cmp.SliceEqWith(
			actualResponse, expectedResponse,
			func(a, x apimodels.Summary) bool { return a.Equal(x) },
		) {
			t.Errorf(
				"response is not equal (actual,expected): %v,%v",
				actualResponse, expectedResponse,
			)
		}

		if request.URL.Path != "/model-groups/fraud-detector/versions" {
			t.Errorf("request path is wrong: %s", request.URL.Path)
		}
		q := request.URL.Query()
		if q.Get("approval") != "Approved,PendingManualApproval" {
			t.Errorf("query approval is wrong: %s", q.Get("approval"))
		}
		if q.Get("since") == "" {
			t.Errorf("query since is not set")
		}
	})
}

func TestSetModelApproval(t *testing.T) {
	t.Run("it PUTs the approval change and returns the updated version", func(t *testing.T) {
		expectedResponse := apimodels.Detail{
			Summary: apimodels.Summary{
				Group: "fraud-detector", Version: 12,
				Status:         apimodels.StatusCompleted,
				ApprovalStatus: apimodels.ApprovalApproved,
				UpdatedAt: try.To(rfctime.ParseRFC3339DateTime(
					"2026-08-25T11:00:00+00:00",
				)).OrFatal(t),
			},
			Inference: apimodels.InferenceSpec{
				Image:        "registry.example/serving:1.0",
				ModelDataUrl: "s3://models/fraud-detector/12/model.tar.gz",
			},
			Metrics:      map[string]float64{"auc": 0.93},
			ApprovalNote: "looks good",
			CreatedAt: try.To(rfctime.ParseRFC3339DateTime(
				"2026-08-24T10:30:00+00:00",
			)).OrFatal(t),
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

		change := apimodels.ApprovalChange{
			Status: apimodels.ApprovalApproved, Note: "looks good",
		}
		actualResponse := try.To(testee.SetModelApproval(
			context.Background(), "fraud-detector", 12, change,
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
		if request.URL.Path != "/model-groups/fraud-detector/versions/12/approval" {
			t.Errorf("request path is wrong: %s", request.URL.Path)
		}
		if request.Header.Get("Idempotency-Key") == "" {
			t.Errorf("Idempotency-Key header is not set")
		}

		actualChange := try.To(func() (apimodels.ApprovalChange, error) {
			c := apimodels.ApprovalChange{}
			err := json.Unmarshal(requestBody, &c)
			return c, err
		}()).OrFatal(t)
		if actualChange != change {
			t.Errorf(
				"request body is not equal (actual,expected): %v,%v",
				actualChange, change,
			)
		}
	})

	t.Run("when server rejects the change, it returns error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"reason": "version is not in a state which can be approved"}`))
		}))
		defer server.Close()

		profile := kprof.Profile{ApiRoot: server.URL}
		testee := try.To(krst.NewClient(&profile)).OrFatal(t)

		_, err := testee.SetModelApproval(
			context.Background(), "fraud-detector", 12,
			apimodels.ApprovalChange{Status: apimodels.ApprovalApproved},
		)
		if err == nil {
			t.Errorf("no error for rejected approval change")
		}
	})
}
