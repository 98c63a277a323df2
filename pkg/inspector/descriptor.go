package inspector

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/zerfoo/onnxprobe/internal/onnx"
)

// DimKind says which of a Dim's fields is meaningful.
type DimKind int

const (
	DimUnknown DimKind = iota
	DimFixed
	DimSymbolic
)

// Dim is one entry of a declared tensor shape.
type Dim struct {
	Kind  DimKind
	Value int64
	Param string
}

// FixedDim returns a dimension of known size v.
func FixedDim(v int64) Dim { return Dim{Kind: DimFixed, Value: v} }

// SymbolicDim returns a dimension named by the parameter p.
func SymbolicDim(p string) Dim { return Dim{Kind: DimSymbolic, Param: p} }

// UnknownDim returns a dimension with neither a size nor a name.
func UnknownDim() Dim { return Dim{} }

// String renders the size, the symbolic name, or "?" when neither is known.
func (d Dim) String() string {
	switch d.Kind {
	case DimFixed:
		return strconv.FormatInt(d.Value, 10)
	case DimSymbolic:
		return d.Param
	}
	return "?"
}

// MarshalJSON encodes fixed sizes as numbers, symbolic ones as strings and
// unknown ones as null.
func (d Dim) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.plain())
}

func (d Dim) MarshalYAML() (any, error) {
	return d.plain(), nil
}

func (d Dim) plain() any {
	switch d.Kind {
	case DimFixed:
		return d.Value
	case DimSymbolic:
		return d.Param
	}
	return nil
}

// Shape is an ordered list of dimensions; empty for scalars and for values
// whose rank is not declared.
type Shape []Dim

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TensorDescriptor describes one declared input or output of a model.
type TensorDescriptor struct {
	Name  string `json:"name" yaml:"name"`
	Shape Shape  `json:"shape" yaml:"shape,flow"`
	Type  string `json:"type" yaml:"type"`
}

// SessionReport lists the inputs and outputs an inference session declares.
type SessionReport struct {
	Inputs  []TensorDescriptor `json:"inputs" yaml:"inputs"`
	Outputs []TensorDescriptor `json:"outputs" yaml:"outputs"`
}

// GraphReport holds the static graph metadata of a model document.
type GraphReport struct {
	Opset   int64    `json:"opset" yaml:"opset"`
	Inputs  []string `json:"inputs" yaml:"inputs,flow"`
	Outputs []string `json:"outputs" yaml:"outputs,flow"`
}

// describeValue builds a descriptor from a graph value declaration.
func describeValue(info *onnx.ValueInfoProto) TensorDescriptor {
	dims := onnx.TensorShape(info.GetType()).GetDim()
	shape := make(Shape, len(dims))
	for i, d := range dims {
		switch v := d.GetValue().(type) {
		case *onnx.TensorShapeProto_Dimension_DimValue:
			shape[i] = FixedDim(v.DimValue)
		case *onnx.TensorShapeProto_Dimension_DimParam:
			shape[i] = SymbolicDim(v.DimParam)
		default:
			shape[i] = UnknownDim()
		}
	}
	return TensorDescriptor{
		Name:  info.GetName(),
		Shape: shape,
		Type:  onnx.TypeString(info.GetType()),
	}
}

// describeRuntimeValue builds a descriptor from what ONNX Runtime reports.
// The runtime flattens symbolic and unknown sizes to -1, so both become
// unknown dimensions.
func describeRuntimeValue(info onnx.RuntimeValueInfo) TensorDescriptor {
	shape := make(Shape, len(info.Dims))
	for i, d := range info.Dims {
		if d < 0 {
			shape[i] = UnknownDim()
			continue
		}
		shape[i] = FixedDim(d)
	}
	return TensorDescriptor{
		Name:  info.Name,
		Shape: shape,
		Type:  info.TypeString(),
	}
}
