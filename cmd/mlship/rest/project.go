package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mlship/mlship/api/types/projects"
)

func (c *client) GetProject(ctx context.Context, name string) (projects.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("projects", name), nil,
	)
	if err != nil {
		return projects.Detail{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return projects.Detail{}, err
	}
	defer resp.Body.Close()

	var detail projects.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("project:%s is not found", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return projects.Detail{}, err
	}
	return detail, nil
}
