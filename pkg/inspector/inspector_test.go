package inspector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zerfoo/zmf"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"

	"github.com/zerfoo/onnxprobe/internal/onnx"
	"github.com/zerfoo/onnxprobe/internal/onnx/onnxtest"
)

// Helper function to create a dummy ZMF model file
func createDummyZmfModel(t *testing.T, dir, filename string, opset int64) string {
	zmfModel := &zmf.Model{
		Metadata: &zmf.Metadata{
			ProducerName:    "test-producer",
			ProducerVersion: "1.0",
			OpsetVersion:    opset,
		},
		Graph: &zmf.Graph{
			Nodes: []*zmf.Node{
				{Name: "zmf_node1", OpType: "Add"},
			},
			Parameters: make(map[string]*zmf.Tensor),
			Inputs: []*zmf.ValueInfo{
				{Name: "a", Shape: []int64{1, 4}},
				{Name: "b", Shape: []int64{1, 4}},
			},
			Outputs: []*zmf.ValueInfo{
				{Name: "sum", Shape: []int64{1, 4}},
			},
		},
	}
	data, err := proto.Marshal(zmfModel)
	if err != nil {
		t.Fatalf("Failed to marshal dummy ZMF model: %v", err)
	}
	filePath := filepath.Join(dir, filename)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		t.Fatalf("Failed to write dummy ZMF model: %v", err)
	}
	return filePath
}

func TestInspectSession(t *testing.T) {
	dir := t.TempDir()
	path := onnxtest.WriteModel(t, dir, "classifier.onnx", onnxtest.ImageClassifier())

	var out bytes.Buffer
	err := InspectSession(context.Background(), &out, path, NativeBackend{}, FormatText)
	require.NoError(t, err)

	expected := "Inputs:\n" +
		"  Name: input, Shape: [1, 3, 224, 224], Type: tensor(float)\n" +
		"\n" +
		"Outputs:\n" +
		"  Name: output, Shape: [1, 1000], Type: tensor(float)\n"
	assert.Equal(t, expected, out.String())
}

func TestInspectSessionNonTensorValues(t *testing.T) {
	dir := t.TempDir()
	path := onnxtest.WriteModel(t, dir, "crop.onnx", onnxtest.CropClassifier())

	var out bytes.Buffer
	require.NoError(t, InspectSession(context.Background(), &out, path, NativeBackend{}, FormatText))

	expected := "Inputs:\n" +
		"  Name: float_input, Shape: [?, 7], Type: tensor(float)\n" +
		"\n" +
		"Outputs:\n" +
		"  Name: output_label, Shape: [?], Type: tensor(int64)\n" +
		"  Name: output_probability, Shape: [], Type: seq(map(int64,tensor(float)))\n"
	assert.Equal(t, expected, out.String())
}

func TestInspectGraph(t *testing.T) {
	dir := t.TempDir()
	path := onnxtest.WriteModel(t, dir, "crop.onnx", onnxtest.CropClassifier())

	var out bytes.Buffer
	require.NoError(t, InspectGraph(context.Background(), &out, path, FormatText))

	expected := "Model Info:\n" +
		"Opset: 12\n" +
		"Inputs: [float_input]\n" +
		"Outputs: [output_label, output_probability]\n"
	assert.Equal(t, expected, out.String())
}

func TestInspectGraphUsesFirstOpsetEntry(t *testing.T) {
	model := onnxtest.CropClassifier()
	model.OpsetImport = []*onnx.OperatorSetIdProto{
		{Domain: "ai.onnx.ml", Version: 3},
		{Version: 15},
	}
	path := onnxtest.WriteModel(t, t.TempDir(), "ml_first.onnx", model)

	report, err := DescribeGraph(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Opset)
}

func TestGraphNamesMatchSessionNames(t *testing.T) {
	dir := t.TempDir()
	for name, model := range map[string]*onnx.ModelProto{
		"classifier.onnx": onnxtest.ImageClassifier(),
		"crop.onnx":       onnxtest.CropClassifier(),
	} {
		t.Run(name, func(t *testing.T) {
			path := onnxtest.WriteModel(t, dir, name, model)

			graph, err := DescribeGraph(context.Background(), path)
			require.NoError(t, err)
			session, err := NativeBackend{}.Describe(context.Background(), path)
			require.NoError(t, err)

			var inputs, outputs []string
			for _, d := range session.Inputs {
				inputs = append(inputs, d.Name)
			}
			for _, d := range session.Outputs {
				outputs = append(outputs, d.Name)
			}
			assert.Equal(t, graph.Inputs, inputs)
			assert.Equal(t, graph.Outputs, outputs)
		})
	}
}

func TestInspectorsAreIdempotent(t *testing.T) {
	path := onnxtest.WriteModel(t, t.TempDir(), "crop.onnx", onnxtest.CropClassifier())
	ctx := context.Background()

	for _, format := range []Format{FormatText, FormatJSON, FormatYAML} {
		var first, second bytes.Buffer
		require.NoError(t, InspectSession(ctx, &first, path, NativeBackend{}, format))
		require.NoError(t, InspectSession(ctx, &second, path, NativeBackend{}, format))
		assert.Equal(t, first.String(), second.String(), "session output, format %s", format)

		first.Reset()
		second.Reset()
		require.NoError(t, InspectGraph(ctx, &first, path, format))
		require.NoError(t, InspectGraph(ctx, &second, path, format))
		assert.Equal(t, first.String(), second.String(), "graph output, format %s", format)
	}
}

func TestInspectorsFailWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		path     string
		notFound bool
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.onnx"), notFound: true},
		{name: "not a model", path: onnxtest.WriteFile(t, dir, "text.onnx", []byte("this is not an onnx model"))},
		{name: "truncated model", path: onnxtest.WriteFile(t, dir, "truncated.onnx", truncated(onnxtest.ImageClassifier()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := InspectSession(context.Background(), &out, tt.path, NativeBackend{}, FormatText)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLoad)
			assert.Empty(t, out.String())

			err = InspectGraph(context.Background(), &out, tt.path, FormatText)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLoad)
			assert.Empty(t, out.String())

			if tt.notFound {
				assert.True(t, errors.Is(err, fs.ErrNotExist))
			}
		})
	}
}

func truncated(m *onnx.ModelProto) []byte {
	data := onnx.Marshal(m)
	return data[:len(data)/2]
}

func TestInspectGraphEmptyOpset(t *testing.T) {
	model := onnxtest.ImageClassifier()
	model.OpsetImport = nil
	path := onnxtest.WriteModel(t, t.TempDir(), "no_opset.onnx", model)

	var out bytes.Buffer
	err := InspectGraph(context.Background(), &out, path, FormatText)
	assert.ErrorIs(t, err, ErrNoOpset)
	assert.ErrorIs(t, err, ErrLoad)
	assert.Empty(t, out.String())
}

func TestInspectGraphJSON(t *testing.T) {
	path := onnxtest.WriteModel(t, t.TempDir(), "classifier.onnx", onnxtest.ImageClassifier())

	var out bytes.Buffer
	require.NoError(t, InspectGraph(context.Background(), &out, path, FormatJSON))

	var decoded struct {
		Opset   int64    `json:"opset"`
		Inputs  []string `json:"inputs"`
		Outputs []string `json:"outputs"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, int64(13), decoded.Opset)
	assert.Equal(t, []string{"input"}, decoded.Inputs)
	assert.Equal(t, []string{"output"}, decoded.Outputs)
}

func TestInspectSessionYAML(t *testing.T) {
	path := onnxtest.WriteModel(t, t.TempDir(), "crop.onnx", onnxtest.CropClassifier())

	var out bytes.Buffer
	require.NoError(t, InspectSession(context.Background(), &out, path, NativeBackend{}, FormatYAML))

	var decoded struct {
		Inputs []struct {
			Name  string `yaml:"name"`
			Shape []any  `yaml:"shape"`
			Type  string `yaml:"type"`
		} `yaml:"inputs"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded.Inputs, 1)
	assert.Equal(t, "float_input", decoded.Inputs[0].Name)
	assert.Equal(t, []any{nil, 7}, decoded.Inputs[0].Shape)
	assert.Equal(t, "tensor(float)", decoded.Inputs[0].Type)
}

func TestInspectZMFGraph(t *testing.T) {
	dir := t.TempDir()
	zmfFile := createDummyZmfModel(t, dir, "test.zmf", 1)

	var out bytes.Buffer
	require.NoError(t, InspectGraph(context.Background(), &out, zmfFile, FormatText))

	expected := "Model Info:\nOpset: 1\nInputs: [a, b]\nOutputs: [sum]\n"
	assert.Equal(t, expected, out.String())
}

func TestInspectZMFGraphWithoutOpset(t *testing.T) {
	zmfFile := createDummyZmfModel(t, t.TempDir(), "test.zmf", 0)

	_, err := DescribeGraph(context.Background(), zmfFile)
	assert.ErrorIs(t, err, ErrNoOpset)
}
