package view

import (
	"github.com/industrial-go/opcua/internal/ua/addrspace"
	"github.com/industrial-go/opcua/internal/ua/types"
)

// ResultMask bits select which fields Browse fills in on a
// ReferenceDescription (spec §4.6).
const (
	ResultMaskReferenceType  uint32 = 1
	ResultMaskIsForward      uint32 = 1 << 1
	ResultMaskNodeClass      uint32 = 1 << 2
	ResultMaskBrowseName     uint32 = 1 << 3
	ResultMaskDisplayName    uint32 = 1 << 4
	ResultMaskTypeDefinition uint32 = 1 << 5
)

// BrowseDescription selects one node's references to browse (spec
// §4.6).
type BrowseDescription struct {
	NodeID          types.NodeId
	Direction       addrspace.BrowseDirection
	ReferenceTypeID types.NodeId
	IncludeSubtypes bool
	NodeClassMask   uint32
	ResultMask      uint32
}

// ReferenceDescription describes one reference returned from Browse,
// with fields selectively populated per ResultMask (spec §4.6).
type ReferenceDescription struct {
	ReferenceTypeID types.NodeId
	IsForward       bool
	TargetID        types.ExpandedNodeId
	NodeClass       addrspace.NodeClass
	BrowseName      types.QualifiedName
	DisplayName     types.LocalizedText
	TypeDefinition  types.ExpandedNodeId
}

// BrowseResult is one BrowseDescription's outcome (spec §4.6).
type BrowseResult struct {
	StatusCode types.StatusCode
	References []ReferenceDescription
}

// Browse resolves nodesToBrowse against addressSpace (spec §4.6). A
// non-null viewID fails the entire request with BadViewIdUnknown, since
// this implementation does not support views.
func Browse(
	addressSpace *addrspace.AddressSpace,
	viewID types.NodeId,
	nodesToBrowse []BrowseDescription,
	requestedMaxReferencesPerNode uint32,
) ([]BrowseResult, types.StatusCode) {
	if !viewID.IsNull() {
		return nil, types.BadViewIdUnknown
	}

	results := make([]BrowseResult, len(nodesToBrowse))
	for i, desc := range nodesToBrowse {
		results[i] = browseOne(addressSpace, desc, requestedMaxReferencesPerNode)
	}
	return results, types.Good
}

func browseOne(addressSpace *addrspace.AddressSpace, desc BrowseDescription, maxRefs uint32) BrowseResult {
	if desc.NodeID.IsNull() || !addressSpace.NodeExists(desc.NodeID) {
		return BrowseResult{StatusCode: types.BadNodeIdUnknown}
	}

	var filter *addrspace.ReferenceFilter
	if !desc.ReferenceTypeID.IsNull() {
		filter = &addrspace.ReferenceFilter{ReferenceTypeID: desc.ReferenceTypeID, IncludeSubtypes: desc.IncludeSubtypes}
	}

	refs, inverseSplit := addressSpace.FindReferencesByDirection(desc.NodeID, desc.Direction, filter)

	descriptions := make([]ReferenceDescription, 0, len(refs))
	for idx, ref := range refs {
		if uint32(len(descriptions)) >= maxRefs && maxRefs != 0 {
			break
		}
		if ref.TargetID.IsNull() {
			continue
		}
		target, ok := addressSpace.FindNode(ref.TargetID)
		if !ok {
			continue
		}
		if desc.NodeClassMask != 0 && desc.NodeClassMask&uint32(target.Class) == 0 {
			continue
		}

		descriptions = append(descriptions, buildReferenceDescription(addressSpace, desc.ResultMask, ref, idx, inverseSplit, target))
	}

	return BrowseResult{StatusCode: types.Good, References: descriptions}
}

func buildReferenceDescription(
	addressSpace *addrspace.AddressSpace,
	resultMask uint32,
	ref addrspace.Reference,
	idx, inverseSplit int,
	target *addrspace.Node,
) ReferenceDescription {
	rd := ReferenceDescription{TargetID: types.NewExpandedNodeId(target.NodeId)}

	if resultMask&ResultMaskReferenceType != 0 {
		rd.ReferenceTypeID = ref.ReferenceTypeID
	}
	if resultMask&ResultMaskIsForward != 0 {
		rd.IsForward = idx < inverseSplit
	} else {
		rd.IsForward = true
	}
	if resultMask&ResultMaskNodeClass != 0 {
		rd.NodeClass = target.Class
	}
	if resultMask&ResultMaskBrowseName != 0 {
		rd.BrowseName = target.BrowseName
	}
	if resultMask&ResultMaskDisplayName != 0 {
		rd.DisplayName = target.DisplayName
	}
	if resultMask&ResultMaskTypeDefinition != 0 {
		rd.TypeDefinition = typeDefinitionOf(addressSpace, target)
	}
	return rd
}

// typeDefinitionOf returns the HasTypeDefinition target of node, which
// per spec §4.6 is only meaningful for Object and Variable node
// classes; any other class gets a null ExpandedNodeId.
func typeDefinitionOf(addressSpace *addrspace.AddressSpace, node *addrspace.Node) types.ExpandedNodeId {
	if node.Class != addrspace.NodeClassObject && node.Class != addrspace.NodeClassVariable {
		return types.ExpandedNodeId{}
	}
	filter := &addrspace.ReferenceFilter{ReferenceTypeID: addrspace.ReferenceTypeHasTypeDefinition}
	refs, _ := addressSpace.FindReferencesByDirection(node.NodeId, addrspace.BrowseDirectionForward, filter)
	if len(refs) == 0 {
		return types.ExpandedNodeId{}
	}
	return types.NewExpandedNodeId(refs[0].TargetID)
}

// BrowseNext never produces continuation-based results in this
// implementation (spec §4.6: "this implementation does not yet produce
// continuation points... BrowseNext returns BadNothingToDo until
// implemented").
func BrowseNext() types.StatusCode {
	return types.BadNothingToDo
}
