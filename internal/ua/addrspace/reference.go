package addrspace

import "github.com/industrial-go/opcua/internal/ua/types"

// BrowseDirection selects which half of a node's reference index
// FindReferencesByDirection walks (spec §4.3).
type BrowseDirection uint8

const (
	BrowseDirectionForward BrowseDirection = iota
	BrowseDirectionInverse
	BrowseDirectionBoth
)

// Reference is a typed directed edge between two nodes (spec §3).
type Reference struct {
	ReferenceTypeID types.NodeId
	TargetID        types.NodeId
	IsForward       bool
}

// ReferenceFilter narrows FindReferencesByDirection to one reference type
// (and, if IncludeSubtypes, its subtypes per the HasSubtype hierarchy).
type ReferenceFilter struct {
	ReferenceTypeID types.NodeId
	IncludeSubtypes bool
}

// Well-known reference type identifiers (namespace 0), used both by the
// standard bootstrap nodes and by callers building browse filters.
var (
	ReferenceTypeOrganizes        = types.NewNumericNodeId(0, 35)
	ReferenceTypeHasTypeDefinition = types.NewNumericNodeId(0, 40)
	ReferenceTypeHasSubtype       = types.NewNumericNodeId(0, 45)
	ReferenceTypeHasComponent     = types.NewNumericNodeId(0, 47)
)
