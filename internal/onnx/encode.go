package onnx

import "google.golang.org/protobuf/encoding/protowire"

// Marshal encodes m in the ONNX wire format. Zero-valued scalar fields are
// omitted; oneof members are always written.
func Marshal(m *ModelProto) []byte {
	var b []byte
	b = appendInt64(b, 1, m.GetIrVersion())
	b = appendString(b, 2, m.GetProducerName())
	b = appendString(b, 3, m.GetProducerVersion())
	b = appendString(b, 4, m.GetDomain())
	b = appendInt64(b, 5, m.GetModelVersion())
	b = appendString(b, 6, m.GetDocString())
	if g := m.GetGraph(); g != nil {
		b = appendMessage(b, 7, encodeGraph(g))
	}
	for _, opset := range m.GetOpsetImport() {
		var sub []byte
		sub = appendString(sub, 1, opset.GetDomain())
		sub = appendInt64(sub, 2, opset.GetVersion())
		b = appendMessage(b, 8, sub)
	}
	for _, entry := range m.GetMetadataProps() {
		var sub []byte
		sub = appendString(sub, 1, entry.GetKey())
		sub = appendString(sub, 2, entry.GetValue())
		b = appendMessage(b, 14, sub)
	}
	return b
}

func encodeGraph(g *GraphProto) []byte {
	var b []byte
	for _, node := range g.GetNode() {
		b = appendMessage(b, 1, encodeNode(node))
	}
	b = appendString(b, 2, g.GetName())
	for _, tensor := range g.GetInitializer() {
		b = appendMessage(b, 5, encodeTensor(tensor))
	}
	b = appendString(b, 10, g.GetDocString())
	for _, info := range g.GetInput() {
		b = appendMessage(b, 11, encodeValueInfo(info))
	}
	for _, info := range g.GetOutput() {
		b = appendMessage(b, 12, encodeValueInfo(info))
	}
	for _, info := range g.GetValueInfo() {
		b = appendMessage(b, 13, encodeValueInfo(info))
	}
	return b
}

func encodeNode(n *NodeProto) []byte {
	var b []byte
	for _, in := range n.GetInput() {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, in)
	}
	for _, out := range n.GetOutput() {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, out)
	}
	b = appendString(b, 3, n.GetName())
	b = appendString(b, 4, n.GetOpType())
	b = appendString(b, 7, n.GetDomain())
	return b
}

func encodeTensor(t *TensorProto) []byte {
	var b []byte
	if dims := t.GetDims(); len(dims) > 0 {
		var packed []byte
		for _, d := range dims {
			packed = protowire.AppendVarint(packed, uint64(d))
		}
		b = appendMessage(b, 1, packed)
	}
	b = appendInt64(b, 2, int64(t.GetDataType()))
	b = appendString(b, 8, t.GetName())
	return b
}

func encodeValueInfo(v *ValueInfoProto) []byte {
	var b []byte
	b = appendString(b, 1, v.GetName())
	if t := v.GetType(); t != nil {
		b = appendMessage(b, 2, encodeType(t))
	}
	b = appendString(b, 3, v.GetDocString())
	return b
}

func encodeType(t *TypeProto) []byte {
	var b []byte
	switch v := t.GetValue().(type) {
	case *TypeProto_TensorType:
		b = appendMessage(b, 1, encodeTensorType(v.TensorType.GetElemType(), v.TensorType.GetShape()))
	case *TypeProto_SequenceType:
		b = appendMessage(b, 4, encodeElemType(v.SequenceType.GetElemType()))
	case *TypeProto_MapType:
		var sub []byte
		sub = appendInt64(sub, 1, int64(v.MapType.GetKeyType()))
		if vt := v.MapType.GetValueType(); vt != nil {
			sub = appendMessage(sub, 2, encodeType(vt))
		}
		b = appendMessage(b, 5, sub)
	case *TypeProto_SparseTensorType:
		b = appendMessage(b, 8, encodeTensorType(v.SparseTensorType.GetElemType(), v.SparseTensorType.GetShape()))
	case *TypeProto_OptionalType:
		b = appendMessage(b, 9, encodeElemType(v.OptionalType.GetElemType()))
	}
	b = appendString(b, 6, t.GetDenotation())
	return b
}

func encodeTensorType(elemType int32, shape *TensorShapeProto) []byte {
	var b []byte
	b = appendInt64(b, 1, int64(elemType))
	if shape != nil {
		var sub []byte
		for _, dim := range shape.GetDim() {
			sub = appendMessage(sub, 1, encodeDimension(dim))
		}
		b = appendMessage(b, 2, sub)
	}
	return b
}

func encodeElemType(elem *TypeProto) []byte {
	if elem == nil {
		return nil
	}
	return appendMessage(nil, 1, encodeType(elem))
}

func encodeDimension(d *TensorShapeProto_Dimension) []byte {
	var b []byte
	switch v := d.GetValue().(type) {
	case *TensorShapeProto_Dimension_DimValue:
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(v.DimValue))
	case *TensorShapeProto_Dimension_DimParam:
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, v.DimParam)
	}
	b = appendString(b, 3, d.GetDenotation())
	return b
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, sub []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, sub)
}
