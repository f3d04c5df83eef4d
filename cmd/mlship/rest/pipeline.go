package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mlship/mlship/api/types/misc/rfctime"
	"github.com/mlship/mlship/api/types/pipelines"
)

func (c *client) FindExecutions(ctx context.Context, query FindExecutionParameter) ([]pipelines.Summary, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("executions"), nil,
	)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	paramMap := map[string][]string{
		"pipeline": query.Pipeline,
		"status":   query.Status,
	}
	for key, value := range paramMap {
		if 0 < len(value) {
			q.Add(key, strings.Join(value, ","))
		}
	}
	if query.TriggerType != "" {
		q.Add("triggerType", query.TriggerType)
	}
	if query.TriggerDetail != "" {
		q.Add("triggerDetail", query.TriggerDetail)
	}
	if query.Since != nil {
		q.Add("since", query.Since.Format(rfctime.RFC3339DateTimeFormatZ))
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := make([]pipelines.Summary, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("[BUG] client is not compatible with the server (status code = %d)", resp.StatusCode),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}

	return found, nil
}

func (c *client) GetExecution(ctx context.Context, executionId string) (pipelines.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("executions", executionId), nil,
	)
	if err != nil {
		return pipelines.Detail{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return pipelines.Detail{}, err
	}
	defer resp.Body.Close()

	var detail pipelines.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("executionId:%s is not found", executionId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return pipelines.Detail{}, err
	}
	return detail, nil
}

func (c *client) SubmitGateDecision(
	ctx context.Context, executionId string, decision pipelines.GateDecision,
) (pipelines.Detail, error) {
	body, err := json.Marshal(decision)
	if err != nil {
		return pipelines.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut,
		c.apipath("executions", executionId, "gate"),
		bytes.NewReader(body),
	)
	if err != nil {
		return pipelines.Detail{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.send(req)
	if err != nil {
		return pipelines.Detail{}, err
	}
	defer resp.Body.Close()

	var detail pipelines.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("gate decision for executionId:%s is rejected by server. the gate token may be stale", executionId),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return pipelines.Detail{}, err
	}
	return detail, nil
}
