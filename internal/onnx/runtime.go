package onnx

import (
	"errors"
	"fmt"
)

// ErrRuntimeUnavailable is returned when the ONNX Runtime shared library
// cannot be used, either because this binary was built without cgo or
// because the library failed to initialise.
var ErrRuntimeUnavailable = errors.New("ONNX Runtime is unavailable")

// ValueKind mirrors the runtime's ONNXType enumeration.
type ValueKind int

const (
	ValueKindUnknown ValueKind = iota
	ValueKindTensor
	ValueKindSequence
	ValueKindMap
	ValueKindOpaque
	ValueKindSparseTensor
	ValueKindOptional
)

// RuntimeValueInfo is one declared input or output as reported by an
// ONNX Runtime session. Symbolic dimensions come back as -1.
type RuntimeValueInfo struct {
	Name     string
	Kind     ValueKind
	ElemType DataType
	Dims     []int64
}

// TypeString names the value type in the same notation as TypeString. The
// runtime binding does not expose element types of non-tensor values, so
// those render with the container name only.
func (v RuntimeValueInfo) TypeString() string {
	switch v.Kind {
	case ValueKindTensor:
		return fmt.Sprintf("tensor(%s)", v.ElemType)
	case ValueKindSparseTensor:
		return fmt.Sprintf("sparse_tensor(%s)", v.ElemType)
	case ValueKindSequence:
		return "seq"
	case ValueKindMap:
		return "map"
	case ValueKindOpaque:
		return "opaque"
	case ValueKindOptional:
		return "optional"
	}
	return "unknown"
}
