// Package onnxtest builds small ONNX model documents for tests.
package onnxtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zerfoo/onnxprobe/internal/onnx"
)

// Dim is a shape entry for Tensor: an int64 is a fixed size, a string a
// symbolic one, and nil an unknown dimension.
type Dim any

// Tensor returns a tensor value declaration. A nil dims slice leaves the
// rank unknown; an empty non-nil slice declares a scalar.
func Tensor(name string, elemType onnx.DataType, dims []Dim) *onnx.ValueInfoProto {
	return &onnx.ValueInfoProto{
		Name: name,
		Type: &onnx.TypeProto{
			Value: &onnx.TypeProto_TensorType{
				TensorType: &onnx.TypeProto_Tensor{
					ElemType: int32(elemType),
					Shape:    Shape(dims),
				},
			},
		},
	}
}

// Shape converts dims into a TensorShapeProto.
func Shape(dims []Dim) *onnx.TensorShapeProto {
	if dims == nil {
		return nil
	}
	shape := &onnx.TensorShapeProto{Dim: make([]*onnx.TensorShapeProto_Dimension, len(dims))}
	for i, d := range dims {
		dim := &onnx.TensorShapeProto_Dimension{}
		switch v := d.(type) {
		case int:
			dim.Value = &onnx.TensorShapeProto_Dimension_DimValue{DimValue: int64(v)}
		case int64:
			dim.Value = &onnx.TensorShapeProto_Dimension_DimValue{DimValue: v}
		case string:
			dim.Value = &onnx.TensorShapeProto_Dimension_DimParam{DimParam: v}
		}
		shape.Dim[i] = dim
	}
	return shape
}

// SequenceOfMaps declares a seq(map(key,tensor(value))) value, the shape
// scikit-learn classifiers use for class probabilities.
func SequenceOfMaps(name string, key, value onnx.DataType) *onnx.ValueInfoProto {
	return &onnx.ValueInfoProto{
		Name: name,
		Type: &onnx.TypeProto{
			Value: &onnx.TypeProto_SequenceType{
				SequenceType: &onnx.TypeProto_Sequence{
					ElemType: &onnx.TypeProto{
						Value: &onnx.TypeProto_MapType{
							MapType: &onnx.TypeProto_Map{
								KeyType: int32(key),
								ValueType: &onnx.TypeProto{
									Value: &onnx.TypeProto_TensorType{
										TensorType: &onnx.TypeProto_Tensor{ElemType: int32(value)},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

// ImageClassifier is a model with one float input "input" of shape
// [1, 3, 224, 224] and one float output "output" of shape [1, 1000].
func ImageClassifier() *onnx.ModelProto {
	return &onnx.ModelProto{
		IrVersion:    7,
		ProducerName: "pytorch",
		OpsetImport:  []*onnx.OperatorSetIdProto{{Version: 13}},
		Graph: &onnx.GraphProto{
			Name: "classifier",
			Node: []*onnx.NodeProto{
				{Name: "gemm", OpType: "Gemm", Input: []string{"input", "fc.weight"}, Output: []string{"output"}},
			},
			Initializer: []*onnx.TensorProto{
				{Name: "fc.weight", DataType: int32(onnx.DataTypeFloat), Dims: []int64{1000, 150528}},
			},
			Input:  []*onnx.ValueInfoProto{Tensor("input", onnx.DataTypeFloat, []Dim{1, 3, 224, 224})},
			Output: []*onnx.ValueInfoProto{Tensor("output", onnx.DataTypeFloat, []Dim{1, 1000})},
		},
	}
}

// CropClassifier resembles a converted scikit-learn classifier: a float
// feature matrix with an unknown batch dimension, an int64 label output and
// a sequence of per-class probability maps.
func CropClassifier() *onnx.ModelProto {
	return &onnx.ModelProto{
		IrVersion:       9,
		ProducerName:    "skl2onnx",
		ProducerVersion: "1.16.0",
		Domain:          "ai.onnx",
		OpsetImport: []*onnx.OperatorSetIdProto{
			{Version: 12},
			{Domain: "ai.onnx.ml", Version: 1},
		},
		Graph: &onnx.GraphProto{
			Name: "crop_prediction",
			Node: []*onnx.NodeProto{
				{Name: "LinearClassifier", OpType: "LinearClassifier", Domain: "ai.onnx.ml",
					Input: []string{"float_input"}, Output: []string{"label", "probability_tensor"}},
				{Name: "ZipMap", OpType: "ZipMap", Domain: "ai.onnx.ml",
					Input: []string{"probability_tensor"}, Output: []string{"output_probability"}},
			},
			Input: []*onnx.ValueInfoProto{Tensor("float_input", onnx.DataTypeFloat, []Dim{nil, 7})},
			Output: []*onnx.ValueInfoProto{
				Tensor("output_label", onnx.DataTypeInt64, []Dim{nil}),
				SequenceOfMaps("output_probability", onnx.DataTypeInt64, onnx.DataTypeFloat),
			},
		},
	}
}

// WriteModel marshals m into dir/name and returns the file path.
func WriteModel(t testing.TB, dir, name string, m *onnx.ModelProto) string {
	t.Helper()
	return WriteFile(t, dir, name, onnx.Marshal(m))
}

// WriteFile writes raw bytes into dir/name and returns the file path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
