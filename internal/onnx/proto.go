package onnx

// Message types for the part of onnx.proto that carries model metadata.
// Field and accessor names follow protoc-gen-go output so callers read the
// same as they would against generated code. Node attributes and tensor
// payloads are not decoded.

// ModelProto is the top-level ONNX model document.
type ModelProto struct {
	IrVersion       int64
	OpsetImport     []*OperatorSetIdProto
	ProducerName    string
	ProducerVersion string
	Domain          string
	ModelVersion    int64
	DocString       string
	Graph           *GraphProto
	MetadataProps   []*StringStringEntryProto
}

func (x *ModelProto) GetIrVersion() int64 {
	if x != nil {
		return x.IrVersion
	}
	return 0
}

func (x *ModelProto) GetOpsetImport() []*OperatorSetIdProto {
	if x != nil {
		return x.OpsetImport
	}
	return nil
}

func (x *ModelProto) GetProducerName() string {
	if x != nil {
		return x.ProducerName
	}
	return ""
}

func (x *ModelProto) GetProducerVersion() string {
	if x != nil {
		return x.ProducerVersion
	}
	return ""
}

func (x *ModelProto) GetDomain() string {
	if x != nil {
		return x.Domain
	}
	return ""
}

func (x *ModelProto) GetModelVersion() int64 {
	if x != nil {
		return x.ModelVersion
	}
	return 0
}

func (x *ModelProto) GetDocString() string {
	if x != nil {
		return x.DocString
	}
	return ""
}

func (x *ModelProto) GetGraph() *GraphProto {
	if x != nil {
		return x.Graph
	}
	return nil
}

func (x *ModelProto) GetMetadataProps() []*StringStringEntryProto {
	if x != nil {
		return x.MetadataProps
	}
	return nil
}

// OperatorSetIdProto names an operator set and the version the model uses.
type OperatorSetIdProto struct {
	Domain  string
	Version int64
}

func (x *OperatorSetIdProto) GetDomain() string {
	if x != nil {
		return x.Domain
	}
	return ""
}

func (x *OperatorSetIdProto) GetVersion() int64 {
	if x != nil {
		return x.Version
	}
	return 0
}

type StringStringEntryProto struct {
	Key   string
	Value string
}

func (x *StringStringEntryProto) GetKey() string {
	if x != nil {
		return x.Key
	}
	return ""
}

func (x *StringStringEntryProto) GetValue() string {
	if x != nil {
		return x.Value
	}
	return ""
}

// GraphProto is the computation graph of a model.
type GraphProto struct {
	Node        []*NodeProto
	Name        string
	Initializer []*TensorProto
	DocString   string
	Input       []*ValueInfoProto
	Output      []*ValueInfoProto
	ValueInfo   []*ValueInfoProto
}

func (x *GraphProto) GetNode() []*NodeProto {
	if x != nil {
		return x.Node
	}
	return nil
}

func (x *GraphProto) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *GraphProto) GetInitializer() []*TensorProto {
	if x != nil {
		return x.Initializer
	}
	return nil
}

func (x *GraphProto) GetDocString() string {
	if x != nil {
		return x.DocString
	}
	return ""
}

func (x *GraphProto) GetInput() []*ValueInfoProto {
	if x != nil {
		return x.Input
	}
	return nil
}

func (x *GraphProto) GetOutput() []*ValueInfoProto {
	if x != nil {
		return x.Output
	}
	return nil
}

func (x *GraphProto) GetValueInfo() []*ValueInfoProto {
	if x != nil {
		return x.ValueInfo
	}
	return nil
}

type NodeProto struct {
	Input  []string
	Output []string
	Name   string
	OpType string
	Domain string
}

func (x *NodeProto) GetInput() []string {
	if x != nil {
		return x.Input
	}
	return nil
}

func (x *NodeProto) GetOutput() []string {
	if x != nil {
		return x.Output
	}
	return nil
}

func (x *NodeProto) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *NodeProto) GetOpType() string {
	if x != nil {
		return x.OpType
	}
	return ""
}

func (x *NodeProto) GetDomain() string {
	if x != nil {
		return x.Domain
	}
	return ""
}

// TensorProto holds the header of an initializer; payload fields are skipped.
type TensorProto struct {
	Dims     []int64
	DataType int32
	Name     string
}

func (x *TensorProto) GetDims() []int64 {
	if x != nil {
		return x.Dims
	}
	return nil
}

func (x *TensorProto) GetDataType() int32 {
	if x != nil {
		return x.DataType
	}
	return 0
}

func (x *TensorProto) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

// ValueInfoProto declares the name and type of a graph value.
type ValueInfoProto struct {
	Name      string
	Type      *TypeProto
	DocString string
}

func (x *ValueInfoProto) GetName() string {
	if x != nil {
		return x.Name
	}
	return ""
}

func (x *ValueInfoProto) GetType() *TypeProto {
	if x != nil {
		return x.Type
	}
	return nil
}

func (x *ValueInfoProto) GetDocString() string {
	if x != nil {
		return x.DocString
	}
	return ""
}

// TypeProto is a oneof over the ONNX value kinds.
type TypeProto struct {
	// Types that are assignable to Value:
	//
	//	*TypeProto_TensorType
	//	*TypeProto_SequenceType
	//	*TypeProto_MapType
	//	*TypeProto_OptionalType
	//	*TypeProto_SparseTensorType
	Value      isTypeProto_Value
	Denotation string
}

type isTypeProto_Value interface {
	isTypeProto_Value()
}

type TypeProto_TensorType struct {
	TensorType *TypeProto_Tensor
}

type TypeProto_SequenceType struct {
	SequenceType *TypeProto_Sequence
}

type TypeProto_MapType struct {
	MapType *TypeProto_Map
}

type TypeProto_OptionalType struct {
	OptionalType *TypeProto_Optional
}

type TypeProto_SparseTensorType struct {
	SparseTensorType *TypeProto_SparseTensor
}

func (*TypeProto_TensorType) isTypeProto_Value()       {}
func (*TypeProto_SequenceType) isTypeProto_Value()     {}
func (*TypeProto_MapType) isTypeProto_Value()          {}
func (*TypeProto_OptionalType) isTypeProto_Value()     {}
func (*TypeProto_SparseTensorType) isTypeProto_Value() {}

func (x *TypeProto) GetValue() isTypeProto_Value {
	if x != nil {
		return x.Value
	}
	return nil
}

func (x *TypeProto) GetTensorType() *TypeProto_Tensor {
	if x, ok := x.GetValue().(*TypeProto_TensorType); ok {
		return x.TensorType
	}
	return nil
}

func (x *TypeProto) GetSequenceType() *TypeProto_Sequence {
	if x, ok := x.GetValue().(*TypeProto_SequenceType); ok {
		return x.SequenceType
	}
	return nil
}

func (x *TypeProto) GetMapType() *TypeProto_Map {
	if x, ok := x.GetValue().(*TypeProto_MapType); ok {
		return x.MapType
	}
	return nil
}

func (x *TypeProto) GetOptionalType() *TypeProto_Optional {
	if x, ok := x.GetValue().(*TypeProto_OptionalType); ok {
		return x.OptionalType
	}
	return nil
}

func (x *TypeProto) GetSparseTensorType() *TypeProto_SparseTensor {
	if x, ok := x.GetValue().(*TypeProto_SparseTensorType); ok {
		return x.SparseTensorType
	}
	return nil
}

func (x *TypeProto) GetDenotation() string {
	if x != nil {
		return x.Denotation
	}
	return ""
}

type TypeProto_Tensor struct {
	ElemType int32
	Shape    *TensorShapeProto
}

func (x *TypeProto_Tensor) GetElemType() int32 {
	if x != nil {
		return x.ElemType
	}
	return 0
}

func (x *TypeProto_Tensor) GetShape() *TensorShapeProto {
	if x != nil {
		return x.Shape
	}
	return nil
}

type TypeProto_SparseTensor struct {
	ElemType int32
	Shape    *TensorShapeProto
}

func (x *TypeProto_SparseTensor) GetElemType() int32 {
	if x != nil {
		return x.ElemType
	}
	return 0
}

func (x *TypeProto_SparseTensor) GetShape() *TensorShapeProto {
	if x != nil {
		return x.Shape
	}
	return nil
}

type TypeProto_Sequence struct {
	ElemType *TypeProto
}

func (x *TypeProto_Sequence) GetElemType() *TypeProto {
	if x != nil {
		return x.ElemType
	}
	return nil
}

type TypeProto_Map struct {
	KeyType   int32
	ValueType *TypeProto
}

func (x *TypeProto_Map) GetKeyType() int32 {
	if x != nil {
		return x.KeyType
	}
	return 0
}

func (x *TypeProto_Map) GetValueType() *TypeProto {
	if x != nil {
		return x.ValueType
	}
	return nil
}

type TypeProto_Optional struct {
	ElemType *TypeProto
}

func (x *TypeProto_Optional) GetElemType() *TypeProto {
	if x != nil {
		return x.ElemType
	}
	return nil
}

// TensorShapeProto lists the dimensions of a tensor type. A nil shape means
// the rank is unknown; an empty one is a scalar.
type TensorShapeProto struct {
	Dim []*TensorShapeProto_Dimension
}

func (x *TensorShapeProto) GetDim() []*TensorShapeProto_Dimension {
	if x != nil {
		return x.Dim
	}
	return nil
}

type TensorShapeProto_Dimension struct {
	// Types that are assignable to Value:
	//
	//	*TensorShapeProto_Dimension_DimValue
	//	*TensorShapeProto_Dimension_DimParam
	Value      isTensorShapeProto_Dimension_Value
	Denotation string
}

type isTensorShapeProto_Dimension_Value interface {
	isTensorShapeProto_Dimension_Value()
}

type TensorShapeProto_Dimension_DimValue struct {
	DimValue int64
}

type TensorShapeProto_Dimension_DimParam struct {
	DimParam string
}

func (*TensorShapeProto_Dimension_DimValue) isTensorShapeProto_Dimension_Value() {}
func (*TensorShapeProto_Dimension_DimParam) isTensorShapeProto_Dimension_Value() {}

func (x *TensorShapeProto_Dimension) GetValue() isTensorShapeProto_Dimension_Value {
	if x != nil {
		return x.Value
	}
	return nil
}

func (x *TensorShapeProto_Dimension) GetDimValue() int64 {
	if x, ok := x.GetValue().(*TensorShapeProto_Dimension_DimValue); ok {
		return x.DimValue
	}
	return 0
}

func (x *TensorShapeProto_Dimension) GetDimParam() string {
	if x, ok := x.GetValue().(*TensorShapeProto_Dimension_DimParam); ok {
		return x.DimParam
	}
	return ""
}

func (x *TensorShapeProto_Dimension) GetDenotation() string {
	if x != nil {
		return x.Denotation
	}
	return ""
}
