package rest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mlship/mlship/api/types/endpoints"
)

func (c *client) FindEndpoints(ctx context.Context, names []string) ([]endpoints.Summary, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("endpoints"), nil,
	)
	if err != nil {
		return nil, err
	}

	if 0 < len(names) {
		q := req.URL.Query()
		q.Add("name", strings.Join(names, ","))
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := make([]endpoints.Summary, 0, 5)
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

func (c *client) GetEndpoint(ctx context.Context, name string) (endpoints.Detail, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.apipath("endpoints", name), nil,
	)
	if err != nil {
		return endpoints.Detail{}, err
	}

	resp, err := c.send(req)
	if err != nil {
		return endpoints.Detail{}, err
	}
	defer resp.Body.Close()

	var detail endpoints.Detail
	if err := unmarshalJsonResponse(
		resp, &detail,
		MessageFor{
			Status4xx: fmt.Sprintf("endpoint:%s is not found", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	); err != nil {
		return endpoints.Detail{}, err
	}
	return detail, nil
}

func (c *client) InvokeEndpoint(
	ctx context.Context, name string, contentType string,
	payload io.Reader, handler func(io.Reader) error,
) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.apipath("endpoints", name, "invocations"), payload,
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	r, err := unmarshalStreamResponse(
		resp,
		MessageFor{
			Status4xx: fmt.Sprintf("endpoint:%s rejected the invocation", name),
			Status5xx: fmt.Sprintf("server error (status code = %d)", resp.StatusCode),
		},
	)
	if err != nil {
		return err
	}

	return handler(r)
}
