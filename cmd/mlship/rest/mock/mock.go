package mock

import (
	"context"
	"io"
	"testing"

	apiendpoints "github.com/mlship/mlship/api/types/endpoints"
	apimodels "github.com/mlship/mlship/api/types/models"
	apipipelines "github.com/mlship/mlship/api/types/pipelines"
	apiprojects "github.com/mlship/mlship/api/types/projects"
	"github.com/mlship/mlship/cmd/mlship/rest"
)

type SetModelApprovalArgs struct {
	Group   string
	Version int
	Change  apimodels.ApprovalChange
}

type GetModelArgs struct {
	Group   string
	Version int
}

type SubmitGateDecisionArgs struct {
	ExecutionId string
	Decision    apipipelines.GateDecision
}

type InvokeEndpointArgs struct {
	Name        string
	ContentType string
}

func New(t *testing.T) *mockClient {
	return &mockClient{t: t}
}

type mockClient struct {
	t    *testing.T
	Impl struct {
		GetProject         func(ctx context.Context, name string) (apiprojects.Detail, error)
		FindModels         func(ctx context.Context, query rest.FindModelParameter) ([]apimodels.Summary, error)
		GetModel           func(ctx context.Context, group string, version int) (apimodels.Detail, error)
		SetModelApproval   func(ctx context.Context, group string, version int, change apimodels.ApprovalChange) (apimodels.Detail, error)
		FindExecutions     func(ctx context.Context, query rest.FindExecutionParameter) ([]apipipelines.Summary, error)
		GetExecution       func(ctx context.Context, executionId string) (apipipelines.Detail, error)
		SubmitGateDecision func(ctx context.Context, executionId string, decision apipipelines.GateDecision) (apipipelines.Detail, error)
		FindEndpoints      func(ctx context.Context, names []string) ([]apiendpoints.Summary, error)
		GetEndpoint        func(ctx context.Context, name string) (apiendpoints.Detail, error)
		InvokeEndpoint     func(ctx context.Context, name string, contentType string, payload io.Reader, handler func(io.Reader) error) error
	}
	Calls struct {
		GetProject         []string
		FindModels         []rest.FindModelParameter
		GetModel           []GetModelArgs
		SetModelApproval   []SetModelApprovalArgs
		FindExecutions     []rest.FindExecutionParameter
		GetExecution       []string
		SubmitGateDecision []SubmitGateDecisionArgs
		FindEndpoints      [][]string
		GetEndpoint        []string
		InvokeEndpoint     []InvokeEndpointArgs
	}
}

var _ rest.Client = &mockClient{}

func (m *mockClient) GetProject(ctx context.Context, name string) (apiprojects.Detail, error) {
	m.t.Helper()

	m.Calls.GetProject = append(m.Calls.GetProject, name)
	if m.Impl.GetProject == nil {
		m.t.Fatal("GetProject is not ready to be called")
	}
	return m.Impl.GetProject(ctx, name)
}

func (m *mockClient) FindModels(ctx context.Context, query rest.FindModelParameter) ([]apimodels.Summary, error) {
	m.t.Helper()

	m.Calls.FindModels = append(m.Calls.FindModels, query)
	if m.Impl.FindModels == nil {
		m.t.Fatal("FindModels is not ready to be called")
	}
	return m.Impl.FindModels(ctx, query)
}

func (m *mockClient) GetModel(ctx context.Context, group string, version int) (apimodels.Detail, error) {
	m.t.Helper()

	m.Calls.GetModel = append(m.Calls.GetModel, GetModelArgs{Group: group, Version: version})
	if m.Impl.GetModel == nil {
		m.t.Fatal("GetModel is not ready to be called")
	}
	return m.Impl.GetModel(ctx, group, version)
}

func (m *mockClient) SetModelApproval(
	ctx context.Context, group string, version int, change apimodels.ApprovalChange,
) (apimodels.Detail, error) {
	m.t.Helper()

	m.Calls.SetModelApproval = append(
		m.Calls.SetModelApproval,
		SetModelApprovalArgs{Group: group, Version: version, Change: change},
	)
	if m.Impl.SetModelApproval == nil {
		m.t.Fatal("SetModelApproval is not ready to be called")
	}
	return m.Impl.SetModelApproval(ctx, group, version, change)
}

func (m *mockClient) FindExecutions(ctx context.Context, query rest.FindExecutionParameter) ([]apipipelines.Summary, error) {
	m.t.Helper()

	m.Calls.FindExecutions = append(m.Calls.FindExecutions, query)
	if m.Impl.FindExecutions == nil {
		m.t.Fatal("FindExecutions is not ready to be called")
	}
	return m.Impl.FindExecutions(ctx, query)
}

func (m *mockClient) GetExecution(ctx context.Context, executionId string) (apipipelines.Detail, error) {
	m.t.Helper()

	m.Calls.GetExecution = append(m.Calls.GetExecution, executionId)
	if m.Impl.GetExecution == nil {
		m.t.Fatal("GetExecution is not ready to be called")
	}
	return m.Impl.GetExecution(ctx, executionId)
}

func (m *mockClient) SubmitGateDecision(
	ctx context.Context, executionId string, decision apipipelines.GateDecision,
) (apipipelines.Detail, error) {
	m.t.Helper()

	m.Calls.SubmitGateDecision = append(
		m.Calls.SubmitGateDecision,
		SubmitGateDecisionArgs{ExecutionId: executionId, Decision: decision},
	)
	if m.Impl.SubmitGateDecision == nil {
		m.t.Fatal("SubmitGateDecision is not ready to be called")
	}
	return m.Impl.SubmitGateDecision(ctx, executionId, decision)
}

func (m *mockClient) FindEndpoints(ctx context.Context, names []string) ([]apiendpoints.Summary, error) {
	m.t.Helper()

	m.Calls.FindEndpoints = append(m.Calls.FindEndpoints, names)
	if m.Impl.FindEndpoints == nil {
		m.t.Fatal("FindEndpoints is not ready to be called")
	}
	return m.Impl.FindEndpoints(ctx, names)
}

func (m *mockClient) GetEndpoint(ctx context.Context, name string) (apiendpoints.Detail, error) {
	m.t.Helper()

	m.Calls.GetEndpoint = append(m.Calls.GetEndpoint, name)
	if m.Impl.GetEndpoint == nil {
		m.t.Fatal("GetEndpoint is not ready to be called")
	}
	return m.Impl.GetEndpoint(ctx, name)
}

func (m *mockClient) InvokeEndpoint(
	ctx context.Context, name string, contentType string,
	payload io.Reader, handler func(io.Reader) error,
) error {
	m.t.Helper()

	m.Calls.InvokeEndpoint = append(
		m.Calls.InvokeEndpoint,
		InvokeEndpointArgs{Name: name, ContentType: contentType},
	)
	if m.Impl.InvokeEndpoint == nil {
		m.t.Fatal("InvokeEndpoint is not ready to be called")
	}
	return m.Impl.InvokeEndpoint(ctx, name, contentType, payload, handler)
}
