package view

import (
	"errors"
	"math"

	"github.com/industrial-go/opcua/internal/ua/addrspace"
	"github.com/industrial-go/opcua/internal/ua/types"
)

// remainingPathIndexFullyConsumed marks a BrowsePathTarget as fully
// resolved — no remaining path elements (spec §4.6: "remaining_path_index
// = u32::MAX meaning fully consumed").
const remainingPathIndexFullyConsumed = math.MaxUint32

// BrowsePath pairs a starting node with the RelativePath to resolve
// from it (spec §4.6).
type BrowsePath struct {
	StartingNode types.NodeId
	RelativePath []addrspace.RelativePathElement
}

// BrowsePathTarget is one resolved target of a BrowsePath (spec §4.6).
type BrowsePathTarget struct {
	TargetID            types.ExpandedNodeId
	RemainingPathIndex  uint32
}

// BrowsePathResult is one BrowsePath's outcome (spec §4.6).
type BrowsePathResult struct {
	StatusCode types.StatusCode
	Targets    []BrowsePathTarget
}

// TranslateBrowsePathsToNodeIds resolves each browsePath against
// addressSpace's relative-path resolver (spec §4.6).
func TranslateBrowsePathsToNodeIds(addressSpace *addrspace.AddressSpace, browsePaths []BrowsePath) []BrowsePathResult {
	results := make([]BrowsePathResult, len(browsePaths))
	for i, bp := range browsePaths {
		results[i] = translateOne(addressSpace, bp)
	}
	return results
}

func translateOne(addressSpace *addrspace.AddressSpace, bp BrowsePath) BrowsePathResult {
	if len(bp.RelativePath) == 0 {
		return BrowsePathResult{StatusCode: types.BadNothingToDo}
	}

	targets, err := addressSpace.FindNodesRelativePath(bp.StartingNode, bp.RelativePath)
	if err != nil {
		switch {
		case errors.Is(err, addrspace.ErrNodeNotFound):
			return BrowsePathResult{StatusCode: types.BadNodeIdUnknown}
		default:
			return BrowsePathResult{StatusCode: types.BadNoMatch}
		}
	}

	out := make([]BrowsePathTarget, len(targets))
	for i, id := range targets {
		out[i] = BrowsePathTarget{
			TargetID:           types.NewExpandedNodeId(id),
			RemainingPathIndex: remainingPathIndexFullyConsumed,
		}
	}
	return BrowsePathResult{StatusCode: types.Good, Targets: out}
}
