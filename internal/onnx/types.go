package onnx

import (
	"fmt"
	"strconv"
)

// DataType mirrors TensorProto.DataType.
type DataType int32

const (
	DataTypeUndefined DataType = iota
	DataTypeFloat
	DataTypeUint8
	DataTypeInt8
	DataTypeUint16
	DataTypeInt16
	DataTypeInt32
	DataTypeInt64
	DataTypeString
	DataTypeBool
	DataTypeFloat16
	DataTypeDouble
	DataTypeUint32
	DataTypeUint64
	DataTypeComplex64
	DataTypeComplex128
	DataTypeBfloat16
	DataTypeFloat8E4M3FN
	DataTypeFloat8E4M3FNUZ
	DataTypeFloat8E5M2
	DataTypeFloat8E5M2FNUZ
	DataTypeUint4
	DataTypeInt4
	DataTypeFloat4E2M1
)

var dataTypeNames = [...]string{
	DataTypeUndefined:      "undefined",
	DataTypeFloat:          "float",
	DataTypeUint8:          "uint8",
	DataTypeInt8:           "int8",
	DataTypeUint16:         "uint16",
	DataTypeInt16:          "int16",
	DataTypeInt32:          "int32",
	DataTypeInt64:          "int64",
	DataTypeString:         "string",
	DataTypeBool:           "bool",
	DataTypeFloat16:        "float16",
	DataTypeDouble:         "double",
	DataTypeUint32:         "uint32",
	DataTypeUint64:         "uint64",
	DataTypeComplex64:      "complex64",
	DataTypeComplex128:     "complex128",
	DataTypeBfloat16:       "bfloat16",
	DataTypeFloat8E4M3FN:   "float8e4m3fn",
	DataTypeFloat8E4M3FNUZ: "float8e4m3fnuz",
	DataTypeFloat8E5M2:     "float8e5m2",
	DataTypeFloat8E5M2FNUZ: "float8e5m2fnuz",
	DataTypeUint4:          "uint4",
	DataTypeInt4:           "int4",
	DataTypeFloat4E2M1:     "float4e2m1",
}

// String returns the element type name used inside ONNX type strings.
func (t DataType) String() string {
	if t >= 0 && int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// TypeString renders t the way ONNX Runtime names value types, for example
// "tensor(float)" or "seq(map(int64,tensor(float)))". A nil type renders as "".
func TypeString(t *TypeProto) string {
	switch v := t.GetValue().(type) {
	case *TypeProto_TensorType:
		return fmt.Sprintf("tensor(%s)", DataType(v.TensorType.GetElemType()))
	case *TypeProto_SparseTensorType:
		return fmt.Sprintf("sparse_tensor(%s)", DataType(v.SparseTensorType.GetElemType()))
	case *TypeProto_SequenceType:
		return fmt.Sprintf("seq(%s)", TypeString(v.SequenceType.GetElemType()))
	case *TypeProto_MapType:
		return fmt.Sprintf("map(%s,%s)", DataType(v.MapType.GetKeyType()), TypeString(v.MapType.GetValueType()))
	case *TypeProto_OptionalType:
		return fmt.Sprintf("optional(%s)", TypeString(v.OptionalType.GetElemType()))
	}
	return ""
}

// TensorShape returns the shape of a tensor or sparse tensor type, or nil for
// other kinds and for tensors of unknown rank.
func TensorShape(t *TypeProto) *TensorShapeProto {
	switch v := t.GetValue().(type) {
	case *TypeProto_TensorType:
		return v.TensorType.GetShape()
	case *TypeProto_SparseTensorType:
		return v.SparseTensorType.GetShape()
	}
	return nil
}
