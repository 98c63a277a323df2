//go:build cgo

package onnx

import (
	"fmt"
	"sync"

	"github.com/yalue/onnxruntime_go"
)

// The runtime environment is process global.
var envMu sync.Mutex

func withEnvironment(libraryPath string, fn func() error) error {
	envMu.Lock()
	defer envMu.Unlock()

	if libraryPath != "" {
		onnxruntime_go.SetSharedLibraryPath(libraryPath)
	}
	if err := onnxruntime_go.InitializeEnvironment(); err != nil {
		return fmt.Errorf("%w: failed to initialize ONNX Runtime environment: %v", ErrRuntimeUnavailable, err)
	}
	defer onnxruntime_go.DestroyEnvironment()

	return fn()
}

// RuntimeAvailable reports whether the shared library at libraryPath can be
// loaded and its environment initialised.
func RuntimeAvailable(libraryPath string) error {
	return withEnvironment(libraryPath, func() error { return nil })
}

// SessionInfo opens modelPath with ONNX Runtime and returns the declared
// inputs and outputs in session order.
func SessionInfo(modelPath, libraryPath string) (inputs, outputs []RuntimeValueInfo, err error) {
	err = withEnvironment(libraryPath, func() error {
		in, out, err := onnxruntime_go.GetInputOutputInfo(modelPath)
		if err != nil {
			return fmt.Errorf("failed to get input/output info: %w", err)
		}
		inputs = convertRuntimeInfo(in)
		outputs = convertRuntimeInfo(out)
		return nil
	})
	return inputs, outputs, err
}

func convertRuntimeInfo(infos []onnxruntime_go.InputOutputInfo) []RuntimeValueInfo {
	converted := make([]RuntimeValueInfo, len(infos))
	for i, info := range infos {
		dims := make([]int64, len(info.Dimensions))
		copy(dims, info.Dimensions)
		converted[i] = RuntimeValueInfo{
			Name:     info.Name,
			Kind:     ValueKind(info.OrtValueType),
			ElemType: DataType(info.DataType),
			Dims:     dims,
		}
	}
	return converted
}
