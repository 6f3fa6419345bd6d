package addrspace

import "github.com/industrial-go/opcua/internal/ua/types"

// Well-known standard node identifiers (namespace 0, spec §3's testable
// scenario 3: "Browse of the root folder").
var (
	NodeIDRootFolder    = types.NewNumericNodeId(0, 84)
	NodeIDObjectsFolder = types.NewNumericNodeId(0, 85)
	NodeIDTypesFolder   = types.NewNumericNodeId(0, 86)
	NodeIDViewsFolder   = types.NewNumericNodeId(0, 87)
)

func browseName(ns uint16, name string) types.QualifiedName {
	return types.NewQualifiedName(ns, name)
}

func displayName(text string) types.LocalizedText {
	return types.NewLocalizedText("en", text)
}

// Bootstrap populates a fresh AddressSpace with the standard
// Root/Objects/Types/Views hierarchy connected by Organizes references,
// in that order, matching spec's root-folder browse scenario.
func Bootstrap() (*AddressSpace, error) {
	a := New()

	root := NewNode(NodeIDRootFolder, NodeClassObject, browseName(0, "Root"), displayName("Root"))
	objects := NewNode(NodeIDObjectsFolder, NodeClassObject, browseName(0, "Objects"), displayName("Objects"))
	types_ := NewNode(NodeIDTypesFolder, NodeClassObject, browseName(0, "Types"), displayName("Types"))
	views := NewNode(NodeIDViewsFolder, NodeClassObject, browseName(0, "Views"), displayName("Views"))

	for _, n := range []*Node{root, objects, types_, views} {
		if err := a.Insert(n); err != nil {
			return nil, err
		}
	}

	for _, target := range []types.NodeId{NodeIDObjectsFolder, NodeIDTypesFolder, NodeIDViewsFolder} {
		if err := a.InsertReference(NodeIDRootFolder, ReferenceTypeOrganizes, target); err != nil {
			return nil, err
		}
	}

	return a, nil
}
