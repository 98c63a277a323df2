//go:build !cgo

package onnx

func RuntimeAvailable(libraryPath string) error {
	return ErrRuntimeUnavailable
}

func SessionInfo(modelPath, libraryPath string) (inputs, outputs []RuntimeValueInfo, err error) {
	return nil, nil, ErrRuntimeUnavailable
}
