package env

import (
	"os"

	yaml "gopkg.in/yaml.v3"
)

// ShipEnv is per-project defaults, loaded from a "mlshipenv" file.
//
// Subcommands fall back to these values when flags are omitted, so a
// learner working inside a project checkout does not repeat the project
// wiring on every call.
type ShipEnv struct {
	// name of the deployment project
	Project string `yaml:"project"`

	// model package group the project registers models into
	ModelGroup string `yaml:"modelGroup"`

	// name of the model building pipeline
	BuildPipeline string `yaml:"buildPipeline"`

	// name of the model deployment pipeline
	DeployPipeline string `yaml:"deployPipeline"`

	// inference endpoints the deployment pipeline maintains
	StagingEndpoint    string `yaml:"stagingEndpoint"`
	ProductionEndpoint string `yaml:"productionEndpoint"`
}

func New() *ShipEnv {
	return new(ShipEnv)
}

// LoadShipEnv loads ShipEnv from file.
//
// A missing file is not an error: it returns an empty ShipEnv.
func LoadShipEnv(filepath string) (*ShipEnv, error) {

	env := ShipEnv{}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return &env, nil
	}

	err = yaml.Unmarshal(content, &env)
	if err != nil {
		return nil, err
	}

	return &env, nil
}
