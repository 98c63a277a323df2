package onnx

import (
	"errors"
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is wrapped by every decode failure caused by the input bytes.
var ErrMalformed = errors.New("malformed ONNX protobuf")

// maxTypeDepth bounds the nesting of sequence/map/optional types.
const maxTypeDepth = 64

// Load reads an ONNX model file and returns the parsed ModelProto.
func Load(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ONNX file: %w", err)
	}

	model := &ModelProto{}
	if err := Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ONNX protobuf: %w", err)
	}

	return model, nil
}

// Unmarshal decodes the wire-format bytes of a ModelProto into m.
// Fields outside the supported subset are skipped. A message field that
// occurs more than once is merged, as protobuf parsers do.
func Unmarshal(b []byte, m *ModelProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1: // ir_version
			m.IrVersion, err = f.int64()
		case 2: // producer_name
			m.ProducerName, err = f.string()
		case 3: // producer_version
			m.ProducerVersion, err = f.string()
		case 4: // domain
			m.Domain, err = f.string()
		case 5: // model_version
			m.ModelVersion, err = f.int64()
		case 6: // doc_string
			m.DocString, err = f.string()
		case 7: // graph
			if m.Graph == nil {
				m.Graph = &GraphProto{}
			}
			err = f.message(func(b []byte) error { return decodeGraph(b, m.Graph) })
		case 8: // opset_import
			opset := &OperatorSetIdProto{}
			err = f.message(func(b []byte) error { return decodeOpset(b, opset) })
			m.OpsetImport = append(m.OpsetImport, opset)
		case 14: // metadata_props
			entry := &StringStringEntryProto{}
			err = f.message(func(b []byte) error { return decodeStringEntry(b, entry) })
			m.MetadataProps = append(m.MetadataProps, entry)
		}
		return err
	})
}

func decodeOpset(b []byte, m *OperatorSetIdProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1:
			m.Domain, err = f.string()
		case 2:
			m.Version, err = f.int64()
		}
		return err
	})
}

func decodeStringEntry(b []byte, m *StringStringEntryProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1:
			m.Key, err = f.string()
		case 2:
			m.Value, err = f.string()
		}
		return err
	})
}

func decodeGraph(b []byte, m *GraphProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1: // node
			node := &NodeProto{}
			err = f.message(func(b []byte) error { return decodeNode(b, node) })
			m.Node = append(m.Node, node)
		case 2: // name
			m.Name, err = f.string()
		case 5: // initializer
			tensor := &TensorProto{}
			err = f.message(func(b []byte) error { return decodeTensor(b, tensor) })
			m.Initializer = append(m.Initializer, tensor)
		case 10: // doc_string
			m.DocString, err = f.string()
		case 11, 12, 13: // input, output, value_info
			info := &ValueInfoProto{}
			err = f.message(func(b []byte) error { return decodeValueInfo(b, info) })
			switch num {
			case 11:
				m.Input = append(m.Input, info)
			case 12:
				m.Output = append(m.Output, info)
			default:
				m.ValueInfo = append(m.ValueInfo, info)
			}
		}
		return err
	})
}

func decodeNode(b []byte, m *NodeProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		var (
			s   string
			err error
		)
		switch num {
		case 1:
			s, err = f.string()
			m.Input = append(m.Input, s)
		case 2:
			s, err = f.string()
			m.Output = append(m.Output, s)
		case 3:
			m.Name, err = f.string()
		case 4:
			m.OpType, err = f.string()
		case 7:
			m.Domain, err = f.string()
		}
		return err
	})
}

func decodeTensor(b []byte, m *TensorProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1: // dims, packed or not
			m.Dims, err = f.appendInt64s(m.Dims)
		case 2:
			m.DataType, err = f.int32()
		case 8:
			m.Name, err = f.string()
		}
		return err
	})
}

func decodeValueInfo(b []byte, m *ValueInfoProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1:
			m.Name, err = f.string()
		case 2:
			if m.Type == nil {
				m.Type = &TypeProto{}
			}
			err = f.message(func(b []byte) error { return decodeType(b, m.Type, 0) })
		case 3:
			m.DocString, err = f.string()
		}
		return err
	})
}

func decodeType(b []byte, m *TypeProto, depth int) error {
	if depth > maxTypeDepth {
		return fmt.Errorf("%w: type nesting exceeds %d levels", ErrMalformed, maxTypeDepth)
	}
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1: // tensor_type
			t := m.GetTensorType()
			if t == nil {
				t = &TypeProto_Tensor{}
			}
			err = f.message(func(b []byte) error {
				return decodeTensorType(b, &t.ElemType, &t.Shape)
			})
			m.Value = &TypeProto_TensorType{TensorType: t}
		case 4: // sequence_type
			t := m.GetSequenceType()
			if t == nil {
				t = &TypeProto_Sequence{}
			}
			err = f.message(func(b []byte) error {
				return decodeElemType(b, &t.ElemType, depth)
			})
			m.Value = &TypeProto_SequenceType{SequenceType: t}
		case 5: // map_type
			t := m.GetMapType()
			if t == nil {
				t = &TypeProto_Map{}
			}
			err = f.message(func(b []byte) error { return decodeMapType(b, t, depth) })
			m.Value = &TypeProto_MapType{MapType: t}
		case 6: // denotation
			m.Denotation, err = f.string()
		case 8: // sparse_tensor_type
			t := m.GetSparseTensorType()
			if t == nil {
				t = &TypeProto_SparseTensor{}
			}
			err = f.message(func(b []byte) error {
				return decodeTensorType(b, &t.ElemType, &t.Shape)
			})
			m.Value = &TypeProto_SparseTensorType{SparseTensorType: t}
		case 9: // optional_type
			t := m.GetOptionalType()
			if t == nil {
				t = &TypeProto_Optional{}
			}
			err = f.message(func(b []byte) error {
				return decodeElemType(b, &t.ElemType, depth)
			})
			m.Value = &TypeProto_OptionalType{OptionalType: t}
		}
		return err
	})
}

// decodeTensorType handles TypeProto.Tensor and TypeProto.SparseTensor,
// which share their field layout.
func decodeTensorType(b []byte, elemType *int32, shape **TensorShapeProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1:
			*elemType, err = f.int32()
		case 2:
			if *shape == nil {
				*shape = &TensorShapeProto{}
			}
			err = f.message(func(b []byte) error { return decodeShape(b, *shape) })
		}
		return err
	})
}

// decodeElemType handles TypeProto.Sequence and TypeProto.Optional.
func decodeElemType(b []byte, elem **TypeProto, depth int) error {
	return walk(b, func(num protowire.Number, f field) error {
		if num != 1 {
			return nil
		}
		if *elem == nil {
			*elem = &TypeProto{}
		}
		return f.message(func(b []byte) error { return decodeType(b, *elem, depth+1) })
	})
}

func decodeMapType(b []byte, m *TypeProto_Map, depth int) error {
	return walk(b, func(num protowire.Number, f field) error {
		var err error
		switch num {
		case 1:
			m.KeyType, err = f.int32()
		case 2:
			if m.ValueType == nil {
				m.ValueType = &TypeProto{}
			}
			err = f.message(func(b []byte) error { return decodeType(b, m.ValueType, depth+1) })
		}
		return err
	})
}

func decodeShape(b []byte, m *TensorShapeProto) error {
	return walk(b, func(num protowire.Number, f field) error {
		if num != 1 {
			return nil
		}
		dim := &TensorShapeProto_Dimension{}
		m.Dim = append(m.Dim, dim)
		return f.message(func(b []byte) error { return decodeDimension(b, dim) })
	})
}

func decodeDimension(b []byte, m *TensorShapeProto_Dimension) error {
	return walk(b, func(num protowire.Number, f field) error {
		switch num {
		case 1:
			v, err := f.int64()
			m.Value = &TensorShapeProto_Dimension_DimValue{DimValue: v}
			return err
		case 2:
			s, err := f.string()
			m.Value = &TensorShapeProto_Dimension_DimParam{DimParam: s}
			return err
		case 3:
			var err error
			m.Denotation, err = f.string()
			return err
		}
		return nil
	})
}

// field is one encoded field value; raw holds the value bytes without the tag.
type field struct {
	num protowire.Number
	typ protowire.Type
	raw []byte
}

// walk splits b into fields and hands each to fn. Fields fn ignores are
// simply dropped, which is how unknown fields are skipped.
func walk(b []byte, fn func(num protowire.Number, f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		m := protowire.ConsumeFieldValue(num, typ, b)
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(m))
		}
		if err := fn(num, field{num: num, typ: typ, raw: b[:m]}); err != nil {
			return err
		}
		b = b[m:]
	}
	return nil
}

func (f field) wireTypeError() error {
	return fmt.Errorf("%w: field %d has unexpected wire type %d", ErrMalformed, f.num, f.typ)
}

func (f field) varint() (uint64, error) {
	if f.typ != protowire.VarintType {
		return 0, f.wireTypeError()
	}
	v, _ := protowire.ConsumeVarint(f.raw)
	return v, nil
}

func (f field) int64() (int64, error) {
	v, err := f.varint()
	return int64(v), err
}

func (f field) int32() (int32, error) {
	v, err := f.varint()
	return int32(v), err
}

func (f field) bytes() ([]byte, error) {
	if f.typ != protowire.BytesType {
		return nil, f.wireTypeError()
	}
	v, _ := protowire.ConsumeBytes(f.raw)
	return v, nil
}

func (f field) string() (string, error) {
	v, err := f.bytes()
	return string(v), err
}

func (f field) message(decode func([]byte) error) error {
	v, err := f.bytes()
	if err != nil {
		return err
	}
	return decode(v)
}

// appendInt64s reads a repeated int64 in either packed or unpacked form.
func (f field) appendInt64s(dst []int64) ([]int64, error) {
	if f.typ == protowire.VarintType {
		v, err := f.int64()
		return append(dst, v), err
	}
	packed, err := f.bytes()
	if err != nil {
		return dst, err
	}
	for len(packed) > 0 {
		v, n := protowire.ConsumeVarint(packed)
		if n < 0 {
			return dst, fmt.Errorf("%w: field %d: %v", ErrMalformed, f.num, protowire.ParseError(n))
		}
		dst = append(dst, int64(v))
		packed = packed[n:]
	}
	return dst, nil
}
