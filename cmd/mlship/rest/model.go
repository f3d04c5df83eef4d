package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mlship/mlship/api/types/misc/rfctime"
	"github.com/mlship/mlship/api/types/models"
)

func (c *client) FindModels(ctx context.Context, query FindModelParameter) ([]models.Summary, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.apipath("model-groups", query.Group, "versions"), nil,
	)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	if 0 < len(query.Approval) {
		q.Add("approval", strings.Join(query.Approval, ","))
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

	found := make([]models.Summary, 0, 5)
	if err := unmarshalJsonResponse(
		resp, &found,
		MessageFor{
			Status4xx: fmt.Sprintf("model package group:%s is not found", query.Group),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return nil, err
	}
	return found, nil
}

func (c *client) GetModel(ctx context.Context, group string, version int) (models.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.apipath("model-groups", group, "versions", strconv.Itoa(version)), nil,
	)
	if err != nil {
		return models.Detail{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return models.Detail{}, err
	}
	defer resp.Body.Close()

	var detail models.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("model package %s:%d is not found", group, version),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return models.Detail{}, err
	}
	return detail, nil
}

func (c *client) SetModelApproval(
	ctx context.Context, group string, version int, change models.ApprovalChange,
) (models.Detail, error) {
	body, err := json.Marshal(change)
	if err != nil {
		return models.Detail{}, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut,
		c.apipath("model-groups", group, "versions", strconv.Itoa(version), "approval"),
		bytes.NewReader(body),
	)
	if err != nil {
		return models.Detail{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	// approval is a one-shot state change. guard retries against doubling it.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.send(req)
	if err != nil {
		return models.Detail{}, err
	}
	defer resp.Body.Close()

	var detail models.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("approval of model package %s:%d is rejected by server", group, version),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return models.Detail{}, err
	}
	return detail, nil
}
