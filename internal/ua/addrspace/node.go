package addrspace

import "github.com/industrial-go/opcua/internal/ua/types"

// NodeClass enumerates the OPC UA node classes (spec §3). Each value is a
// single bit so a node_class_mask can select several classes at once, as
// Browse's result filtering requires.
type NodeClass uint32

const (
	NodeClassObject        NodeClass = 1 << 0
	NodeClassVariable      NodeClass = 1 << 1
	NodeClassMethod        NodeClass = 1 << 2
	NodeClassObjectType    NodeClass = 1 << 3
	NodeClassVariableType  NodeClass = 1 << 4
	NodeClassReferenceType NodeClass = 1 << 5
	NodeClassDataType      NodeClass = 1 << 6
	NodeClassView          NodeClass = 1 << 7
)

func (c NodeClass) String() string {
	switch c {
	case NodeClassObject:
		return "Object"
	case NodeClassVariable:
		return "Variable"
	case NodeClassMethod:
		return "Method"
	case NodeClassObjectType:
		return "ObjectType"
	case NodeClassVariableType:
		return "VariableType"
	case NodeClassReferenceType:
		return "ReferenceType"
	case NodeClassDataType:
		return "DataType"
	case NodeClassView:
		return "View"
	default:
		return "Unknown"
	}
}

// Node is a single address space entry (spec §3). Class-specific
// attributes (e.g. a Variable's value) live in Value/DataType/ValueRank/
// AccessLevel, which are meaningless for other node classes.
type Node struct {
	NodeId      types.NodeId
	Class       NodeClass
	BrowseName  types.QualifiedName
	DisplayName types.LocalizedText
	Description types.LocalizedText

	// Variable/VariableType-specific attributes.
	Value       *types.Variant
	DataType    types.NodeId
	ValueRank   int32
	AccessLevel byte
}

// NewNode builds a Node with the given identity. Class-specific fields
// can be set on the returned value before Insert.
func NewNode(id types.NodeId, class NodeClass, browseName types.QualifiedName, displayName types.LocalizedText) *Node {
	return &Node{NodeId: id, Class: class, BrowseName: browseName, DisplayName: displayName}
}

// key returns the map key used to index this node's identity. NodeId
// itself isn't comparable when it carries a []byte identifier, so nodes
// are indexed by their String() form.
func key(id types.NodeId) string { return id.String() }
