package definition

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/approvd/approvd/model"
)

// Source provides the flow definition used for new submissions.
type Source interface {
	Load() (*model.FlowDefinition, error)
}

type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (fs *FileSource) Load() (*model.FlowDefinition, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return nil, fmt.Errorf("can not read definition file %s: %w", fs.path, err)
	}
	var def model.FlowDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("can not parse definition file %s: %w", fs.path, err)
	}
	if err := Validate(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

func Validate(def *model.FlowDefinition) error {
	if def.FlowId == "" {
		return fmt.Errorf("definition has no flowId")
	}
	if len(def.Steps) == 0 {
		return fmt.Errorf("definition %s has no steps", def.FlowId)
	}
	stepIds := make(map[string]bool)
	for _, step := range def.Steps {
		if step.StepId == "" {
			return fmt.Errorf("definition %s contains a step without stepId", def.FlowId)
		}
		if stepIds[step.StepId] {
			return fmt.Errorf("step id %s is duplicate", step.StepId)
		}
		stepIds[step.StepId] = true
		if step.Role == "" {
			return fmt.Errorf("step %s has no role", step.StepId)
		}
		if len(step.Actions) == 0 {
			return fmt.Errorf("step %s has no actions", step.StepId)
		}
		if step.SlaHours < 0 {
			return fmt.Errorf("step %s has negative slaHours", step.StepId)
		}
		if step.OnTimeout != nil && step.OnTimeout.EscalateTo == "" {
			return fmt.Errorf("step %s defines onTimeout without escalateTo", step.StepId)
		}
	}
	return nil
}
