package inspector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"github.com/zerfoo/onnxprobe/internal/onnx"
	"github.com/zerfoo/onnxprobe/pkg/zmf_inspector"
)

var (
	// ErrLoad wraps every failure to open or read a model file.
	ErrLoad = errors.New("model could not be loaded")
	// ErrNoOpset is returned for models whose opset import list is empty.
	ErrNoOpset = errors.New("model declares no opset import")
)

// InspectSession opens the model at path through backend and writes its
// declared inputs and outputs to w. Nothing is written when loading fails.
func InspectSession(ctx context.Context, w io.Writer, path string, backend Backend, format Format) error {
	klog.FromContext(ctx).V(1).Info("inspecting session", "path", path, "backend", backend.Name())

	report, err := backend.Describe(ctx, path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return Render(w, report, format)
}

// InspectGraph statically loads the model at path, without creating a
// session, and writes its opset version and graph input/output names to w.
// Nothing is written when loading fails.
func InspectGraph(ctx context.Context, w io.Writer, path string, format Format) error {
	report, err := DescribeGraph(ctx, path)
	if err != nil {
		return err
	}
	return Render(w, report, format)
}

// DescribeGraph reads the graph metadata of an ONNX or ZMF model. The format
// is chosen by file extension; anything other than .zmf is read as ONNX.
func DescribeGraph(ctx context.Context, path string) (*GraphReport, error) {
	klog.FromContext(ctx).V(1).Info("inspecting graph", "path", path)

	var (
		report *GraphReport
		err    error
	)
	if strings.EqualFold(filepath.Ext(path), ".zmf") {
		report, err = describeZMFGraph(path)
	} else {
		report, err = describeONNXGraph(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return report, nil
}

func describeONNXGraph(path string) (*GraphReport, error) {
	model, err := onnx.Load(path)
	if err != nil {
		return nil, err
	}
	if len(model.GetOpsetImport()) == 0 {
		return nil, ErrNoOpset
	}

	graph := model.GetGraph()
	report := &GraphReport{
		Opset:   model.GetOpsetImport()[0].GetVersion(),
		Inputs:  make([]string, len(graph.GetInput())),
		Outputs: make([]string, len(graph.GetOutput())),
	}
	for i, info := range graph.GetInput() {
		report.Inputs[i] = info.GetName()
	}
	for i, info := range graph.GetOutput() {
		report.Outputs[i] = info.GetName()
	}
	return report, nil
}

func describeZMFGraph(path string) (*GraphReport, error) {
	model, err := zmf_inspector.Load(path)
	if err != nil {
		return nil, err
	}
	opset := zmf_inspector.Opset(model)
	if opset == 0 {
		return nil, ErrNoOpset
	}
	return &GraphReport{
		Opset:   opset,
		Inputs:  zmf_inspector.InputNames(model),
		Outputs: zmf_inspector.OutputNames(model),
	}, nil
}
