package inspector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerfoo/onnxprobe/internal/onnx"
	"github.com/zerfoo/onnxprobe/internal/onnx/onnxtest"
)

func TestNativeBackendSkipsInitializerInputs(t *testing.T) {
	model := onnxtest.ImageClassifier()
	// Older exporters list weights as graph inputs too.
	model.Graph.Input = append(model.Graph.Input,
		onnxtest.Tensor("fc.weight", onnx.DataTypeFloat, []onnxtest.Dim{1000, 150528}))
	path := onnxtest.WriteModel(t, t.TempDir(), "weights_as_inputs.onnx", model)

	report, err := NativeBackend{}.Describe(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, report.Inputs, 1)
	assert.Equal(t, "input", report.Inputs[0].Name)

	graph, err := DescribeGraph(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"input", "fc.weight"}, graph.Inputs, "static graph keeps every declared input")
}

func TestNativeBackendKeepsSymbolicDims(t *testing.T) {
	model := onnxtest.ImageClassifier()
	model.Graph.Input[0] = onnxtest.Tensor("input", onnx.DataTypeFloat, []onnxtest.Dim{"batch_size", 3, 224, 224})
	path := onnxtest.WriteModel(t, t.TempDir(), "dynamic.onnx", model)

	report, err := NativeBackend{}.Describe(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, Shape{SymbolicDim("batch_size"), FixedDim(3), FixedDim(224), FixedDim(224)}, report.Inputs[0].Shape)
	assert.Equal(t, "[batch_size, 3, 224, 224]", report.Inputs[0].Shape.String())
}

func TestNativeBackendScalar(t *testing.T) {
	model := onnxtest.ImageClassifier()
	model.Graph.Output = append(model.Graph.Output, onnxtest.Tensor("loss", onnx.DataTypeDouble, []onnxtest.Dim{}))
	path := onnxtest.WriteModel(t, t.TempDir(), "scalar.onnx", model)

	report, err := NativeBackend{}.Describe(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, report.Outputs, 2)
	assert.Empty(t, report.Outputs[1].Shape)
	assert.Equal(t, "tensor(double)", report.Outputs[1].Type)
}

func TestNativeBackendRejectsInvalidModels(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *onnx.ModelProto)
	}{
		{name: "no IR version", mutate: func(m *onnx.ModelProto) { m.IrVersion = 0 }},
		{name: "no opset", mutate: func(m *onnx.ModelProto) { m.OpsetImport = nil }},
		{name: "no graph", mutate: func(m *onnx.ModelProto) { m.Graph = nil }},
		{name: "unnamed input", mutate: func(m *onnx.ModelProto) { m.Graph.Input[0].Name = "" }},
		{name: "untyped output", mutate: func(m *onnx.ModelProto) { m.Graph.Output[0].Type = nil }},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := onnxtest.ImageClassifier()
			tt.mutate(model)
			path := onnxtest.WriteModel(t, dir, filepath.Base(t.Name())+".onnx", model)

			_, err := NativeBackend{}.Describe(context.Background(), path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidModel)
		})
	}
}

func TestSelectBackend(t *testing.T) {
	ctx := context.Background()

	b, err := SelectBackend(ctx, BackendNative, "/some/lib.so")
	require.NoError(t, err)
	assert.Equal(t, BackendNative, b.Name())

	b, err = SelectBackend(ctx, BackendOnnxRuntime, "/some/lib.so")
	require.NoError(t, err)
	assert.Equal(t, RuntimeBackend{LibraryPath: "/some/lib.so"}, b)

	b, err = SelectBackend(ctx, BackendAuto, "")
	require.NoError(t, err)
	assert.Equal(t, BackendNative, b.Name())

	b, err = SelectBackend(ctx, BackendAuto, filepath.Join(t.TempDir(), "libonnxruntime.so"))
	require.NoError(t, err)
	assert.Equal(t, BackendNative, b.Name(), "auto falls back when the library cannot load")

	_, err = SelectBackend(ctx, "tensorrt", "")
	assert.ErrorContains(t, err, "unknown session backend")
}

func TestRuntimeBackendMissingLibrary(t *testing.T) {
	path := onnxtest.WriteModel(t, t.TempDir(), "classifier.onnx", onnxtest.ImageClassifier())
	backend := RuntimeBackend{LibraryPath: filepath.Join(t.TempDir(), "libonnxruntime.so")}

	_, err := backend.Describe(context.Background(), path)
	assert.ErrorIs(t, err, onnx.ErrRuntimeUnavailable)
}

func TestDescribeRuntimeValue(t *testing.T) {
	d := describeRuntimeValue(onnx.RuntimeValueInfo{
		Name:     "input",
		Kind:     onnx.ValueKindTensor,
		ElemType: onnx.DataTypeFloat,
		Dims:     []int64{-1, 3, 224, 224},
	})
	assert.Equal(t, "input", d.Name)
	assert.Equal(t, "[?, 3, 224, 224]", d.Shape.String())
	assert.Equal(t, "tensor(float)", d.Type)
}
