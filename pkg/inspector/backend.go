package inspector

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/zerfoo/onnxprobe/internal/onnx"
)

// ErrInvalidModel is wrapped when a model decodes but would be rejected by
// a session load.
var ErrInvalidModel = errors.New("invalid model")

// Backend names accepted by SelectBackend.
const (
	BackendAuto        = "auto"
	BackendNative      = "native"
	BackendOnnxRuntime = "onnxruntime"
)

// Backend opens a model the way an inference session does and reports its
// declared inputs and outputs in session order.
type Backend interface {
	Name() string
	Describe(ctx context.Context, path string) (*SessionReport, error)
}

// NativeBackend loads sessions in pure Go. Inputs backed by an initializer
// are overridable constants, not required inputs, and are left out.
type NativeBackend struct{}

var _ Backend = NativeBackend{}

func (NativeBackend) Name() string { return BackendNative }

func (NativeBackend) Describe(ctx context.Context, path string) (*SessionReport, error) {
	log := klog.FromContext(ctx)

	model, err := onnx.Load(path)
	if err != nil {
		return nil, err
	}
	if err := validateSessionModel(model); err != nil {
		return nil, err
	}

	graph := model.GetGraph()
	initializers := make(map[string]bool, len(graph.GetInitializer()))
	for _, t := range graph.GetInitializer() {
		initializers[t.GetName()] = true
	}

	report := &SessionReport{
		Inputs:  make([]TensorDescriptor, 0, len(graph.GetInput())),
		Outputs: make([]TensorDescriptor, 0, len(graph.GetOutput())),
	}
	for _, info := range graph.GetInput() {
		if initializers[info.GetName()] {
			continue
		}
		report.Inputs = append(report.Inputs, describeValue(info))
	}
	for _, info := range graph.GetOutput() {
		report.Outputs = append(report.Outputs, describeValue(info))
	}

	log.V(2).Info("described session", "backend", BackendNative, "path", path,
		"inputs", len(report.Inputs), "outputs", len(report.Outputs))
	return report, nil
}

// validateSessionModel applies the structural checks a runtime performs
// before it will create a session.
func validateSessionModel(model *onnx.ModelProto) error {
	if model.GetIrVersion() <= 0 {
		return fmt.Errorf("%w: missing IR version", ErrInvalidModel)
	}
	if len(model.GetOpsetImport()) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidModel, ErrNoOpset)
	}
	graph := model.GetGraph()
	if graph == nil {
		return fmt.Errorf("%w: model has no graph", ErrInvalidModel)
	}
	check := func(kind string, infos []*onnx.ValueInfoProto) error {
		for i, info := range infos {
			if info.GetName() == "" {
				return fmt.Errorf("%w: graph %s %d has no name", ErrInvalidModel, kind, i)
			}
			if info.GetType().GetValue() == nil {
				return fmt.Errorf("%w: graph %s %q has no type", ErrInvalidModel, kind, info.GetName())
			}
		}
		return nil
	}
	if err := check("input", graph.GetInput()); err != nil {
		return err
	}
	return check("output", graph.GetOutput())
}

// RuntimeBackend opens sessions with the ONNX Runtime shared library.
type RuntimeBackend struct {
	LibraryPath string
}

var _ Backend = RuntimeBackend{}

func (RuntimeBackend) Name() string { return BackendOnnxRuntime }

func (b RuntimeBackend) Describe(ctx context.Context, path string) (*SessionReport, error) {
	log := klog.FromContext(ctx)

	inputs, outputs, err := onnx.SessionInfo(path, b.LibraryPath)
	if err != nil {
		return nil, err
	}

	report := &SessionReport{
		Inputs:  make([]TensorDescriptor, len(inputs)),
		Outputs: make([]TensorDescriptor, len(outputs)),
	}
	for i, info := range inputs {
		report.Inputs[i] = describeRuntimeValue(info)
	}
	for i, info := range outputs {
		report.Outputs[i] = describeRuntimeValue(info)
	}

	log.V(2).Info("described session", "backend", BackendOnnxRuntime, "path", path,
		"inputs", len(report.Inputs), "outputs", len(report.Outputs))
	return report, nil
}

// SelectBackend returns the backend called name. "auto" (or "") picks ONNX
// Runtime when libraryPath is set and loads, and the native backend otherwise.
func SelectBackend(ctx context.Context, name, libraryPath string) (Backend, error) {
	log := klog.FromContext(ctx)

	switch name {
	case BackendNative:
		return NativeBackend{}, nil
	case BackendOnnxRuntime:
		return RuntimeBackend{LibraryPath: libraryPath}, nil
	case BackendAuto, "":
		if libraryPath == "" {
			return NativeBackend{}, nil
		}
		if err := onnx.RuntimeAvailable(libraryPath); err != nil {
			log.V(1).Info("ONNX Runtime not usable, falling back to native backend", "library", libraryPath, "reason", err.Error())
			return NativeBackend{}, nil
		}
		return RuntimeBackend{LibraryPath: libraryPath}, nil
	default:
		return nil, fmt.Errorf("unknown session backend %q: must be %s, %s or %s",
			name, BackendAuto, BackendNative, BackendOnnxRuntime)
	}
}
