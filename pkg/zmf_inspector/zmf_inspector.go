package zmf_inspector

import (
	"fmt"
	"os"

	"github.com/zerfoo/zmf"
	"google.golang.org/protobuf/proto"
)

// Load reads and deserializes a ZMF model from a file.
func Load(file string) (*zmf.Model, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read ZMF file: %w", err)
	}

	model := &zmf.Model{}
	if err := proto.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ZMF protobuf: %w", err)
	}

	return model, nil
}

// Opset returns the operator set version recorded in the model metadata,
// or 0 when the model carries none.
func Opset(model *zmf.Model) int64 {
	return model.GetMetadata().GetOpsetVersion()
}

// InputNames returns the graph input names in declaration order.
func InputNames(model *zmf.Model) []string {
	inputs := model.GetGraph().GetInputs()
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.GetName()
	}
	return names
}

// OutputNames returns the graph output names in declaration order.
func OutputNames(model *zmf.Model) []string {
	outputs := model.GetGraph().GetOutputs()
	names := make([]string, len(outputs))
	for i, out := range outputs {
		names[i] = out.GetName()
	}
	return names
}
