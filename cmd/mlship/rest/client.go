package rest

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apiendpoints "github.com/mlship/mlship/api/types/endpoints"
	apimodels "github.com/mlship/mlship/api/types/models"
	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	apiprojects "github.com/mlship/mlship/api/types/projects"
	kprof "github.com/mlship/mlship/cmd/mlship/config/profiles"
	"github.com/mlship/mlship/pkg/utils"
)

// Client is a typed client of the vendor MLOps control plane.
//
// It only reads and pokes the vendor-side resources. Pipelines, the model
// registry and the endpoints themselves all live on the vendor side.
type Client interface {
	// GetProject retrieves descriptive metadata of a deployment project.
	//
	// Args
	//
	// - context.Context
	//
	// - string: name of the project
	//
	// Returns
	//
	// - apiprojects.Detail: metadata of the project
	//
	// - error
	GetProject(ctx context.Context, name string) (apiprojects.Detail, error)

	// FindModels finds model package versions in a group.
	//
	// Args
	//
	// - context.Context
	//
	// - FindModelParameter: search condition
	//
	// Returns
	//
	// - []apimodels.Summary: found versions
	//
	// - error
	FindModels(ctx context.Context, query FindModelParameter) ([]apimodels.Summary, error)

	// GetModel retrieves a model package version.
	//
	// Args
	//
	// - context.Context
	//
	// - string: model package group
	//
	// - int: version in the group
	//
	// Returns
	//
	// - apimodels.Detail: metadata of the version
	//
	// - error
	GetModel(ctx context.Context, group string, version int) (apimodels.Detail, error)

	// SetModelApproval updates the approval status of a model package version.
	//
	// This is the state change which triggers the deployment pipeline on
	// the vendor side.
	SetModelApproval(ctx context.Context, group string, version int, change apimodels.ApprovalChange) (apimodels.Detail, error)

	// FindExecutions finds pipeline executions.
	FindExecutions(ctx context.Context, query FindExecutionParameter) ([]apipipelines.Summary, error)

	// GetExecution retrieves a pipeline execution with its stages.
	GetExecution(ctx context.Context, executionId string) (apipipelines.Detail, error)

	// SubmitGateDecision resolves a pending manual approval gate of an execution.
	//
	// The decision must carry the token of the currently pending gate.
	// A stale token is rejected by the vendor.
	SubmitGateDecision(ctx context.Context, executionId string, decision apipipelines.GateDecision) (apipipelines.Detail, error)

	// FindEndpoints lists inference endpoints. With names, it filters to them.
	FindEndpoints(ctx context.Context, names []string) ([]apiendpoints.Summary, error)

	// GetEndpoint retrieves an inference endpoint.
	GetEndpoint(ctx context.Context, name string) (apiendpoints.Detail, error)

	// InvokeEndpoint sends payload to the endpoint runtime for a real-time
	// prediction and passes the raw response stream to handler.
	//
	// Args
	//
	// - context.Context
	//
	// - string: endpoint name
	//
	// - string: content type of the payload
	//
	// - io.Reader: request payload
	//
	// - handler: function called with the response stream.
	//
	// Returns
	//
	// - error: error occured when invoking.
	InvokeEndpoint(ctx context.Context, name string, contentType string, payload io.Reader, handler func(io.Reader) error) error
}

// FindModelParameter is a search condition for FindModels.
type FindModelParameter struct {
	// model package group to search in
	Group string

	// approval statuses to filter with. empty = any.
	Approval []string

	// lower bound of UpdatedAt. nil = unbounded.
	Since *time.Time
}

// FindExecutionParameter is a search condition for FindExecutions.
type FindExecutionParameter struct {
	// pipeline names to search in. empty = any.
	Pipeline []string

	// execution statuses to filter with. empty = any.
	Status []string

	// trigger type to filter with. empty = any.
	TriggerType string

	// trigger detail to filter with. empty = any.
	TriggerDetail string

	// lower bound of StartedAt. nil = unbounded.
	Since *time.Time
}

type client struct {
	httpclient *http.Client
	api        string
	token      string
}

// create new client for Profile
//
// # Args
//
// - *kprof.Profile
//
// # Return
//
// - Client: created client
//
// - error: If given profile is invalid, ErrProfileInvalid is returned.
func NewClient(prof *kprof.Profile) (Client, error) {
	if err := prof.Verify(); err != nil {
		return nil, err
	}
	httpclient := new(http.Client)

	if prof.Cert.CA != "" {
		hc, err := trustCa(httpclient, []string{prof.Cert.CA})
		if err != nil {
			return nil, err
		}
		httpclient = hc
	}

	c := &client{
		httpclient: httpclient,
		api:        strings.TrimSuffix(prof.ApiRoot, "/"),
		token:      prof.Token,
	}

	return c, nil
}

// build URL with path
func (c *client) apipath(path ...string) string {
	path = utils.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})

	return strings.Join(append([]string{c.api}, path...), "/")
}

// send req with the profile's bearer token.
func (c *client) send(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpclient.Do(req)
}

func trustCa(hc *http.Client, cacerts []string) (*http.Client, error) {
	if len(cacerts) <= 0 {
		return hc, nil
	}

	if hc.Transport == nil {
		hc.Transport = http.DefaultTransport
	}

	tran, ok := hc.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to add ca cert")
	}
	tran = tran.Clone()

	tcc := tran.TLSClientConfig.Clone()
	if tcc == nil {
		tcc = &tls.Config{}
	}

	rootcas := tcc.RootCAs
	if rootcas == nil {
		rootcas = x509.NewCertPool()
		tcc.RootCAs = rootcas
	}
	for _, ca := range cacerts {
		bin, err := base64.StdEncoding.DecodeString(ca)
		if err != nil {
			return nil, err
		}

		if !rootcas.AppendCertsFromPEM(bin) {
			return nil, fmt.Errorf("failed to add cert")
		}
	}

	tran.TLSClientConfig = tcc
	hc.Transport = tran
	return hc, nil
}
