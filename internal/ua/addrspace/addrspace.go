package addrspace

import (
	"errors"
	"sync"

	"github.com/industrial-go/opcua/internal/ua/types"
)

// Errors returned by AddressSpace operations. The view service (C6) maps
// these onto OPC UA StatusCode values; this package stays codec-agnostic.
var (
	ErrNodeAlreadyExists = errors.New("opcua: node already exists")
	ErrNodeNotFound      = errors.New("opcua: node not found")
	ErrEmptyPathResult   = errors.New("opcua: relative path matched no nodes")
)

// AddressSpace is the server's indexed graph of typed nodes and typed
// references (spec §4.3): a node map plus a forward-by-source and
// inverse-by-target reference index, all protected by one mutex per the
// fixed ServerState-before-AddressSpace-before-Session lock ordering
// (spec §5).
type AddressSpace struct {
	mu  sync.RWMutex
	nodes map[string]*Node

	// forward[src] holds references originating at src; inverse[dst]
	// holds references landing at dst. Both are populated by every
	// InsertReference call so each endpoint can be queried from its own
	// side without a second pass over the other node's index.
	forward map[string][]Reference
	inverse map[string][]Reference
}

// New returns an empty AddressSpace. Use Bootstrap to populate the
// standard Root/Objects/Types/Views hierarchy.
func New() *AddressSpace {
	return &AddressSpace{
		nodes:   make(map[string]*Node),
		forward: make(map[string][]Reference),
		inverse: make(map[string][]Reference),
	}
}

// Insert adds node to the address space. It fails with
// ErrNodeAlreadyExists if node.NodeId is already present.
func (a *AddressSpace) Insert(node *Node) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	k := key(node.NodeId)
	if _, exists := a.nodes[k]; exists {
		return ErrNodeAlreadyExists
	}
	a.nodes[k] = node
	return nil
}

// FindNode looks up a node by id, returning (nil, false) if absent.
func (a *AddressSpace) FindNode(id types.NodeId) (*Node, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n, ok := a.nodes[key(id)]
	return n, ok
}

// NodeExists is a constant-time existence check (no node copy returned).
func (a *AddressSpace) NodeExists(id types.NodeId) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	_, ok := a.nodes[key(id)]
	return ok
}

// InsertReference records a typed edge between source and target.
// Both endpoints must already exist; the forward index (keyed by
// source) and the inverse index (keyed by target) are updated
// atomically under the same lock.
func (a *AddressSpace) InsertReference(source types.NodeId, referenceType types.NodeId, target types.NodeId) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	srcKey, dstKey := key(source), key(target)
	if _, ok := a.nodes[srcKey]; !ok {
		return ErrNodeNotFound
	}
	if _, ok := a.nodes[dstKey]; !ok {
		return ErrNodeNotFound
	}

	a.forward[srcKey] = append(a.forward[srcKey], Reference{ReferenceTypeID: referenceType, TargetID: target, IsForward: true})
	a.inverse[dstKey] = append(a.inverse[dstKey], Reference{ReferenceTypeID: referenceType, TargetID: source, IsForward: false})
	return nil
}

// FindReferencesByDirection returns a single merged slice where indices
// [0, inverseSplit) are forward references and the remainder are inverse
// references (spec §4.3) — preserved as a split index rather than two
// slices so the view service can recover is_forward per item by
// comparing its position against the split, exactly as the original
// implementation this stack is modeled on does.
func (a *AddressSpace) FindReferencesByDirection(
	id types.NodeId,
	direction BrowseDirection,
	filter *ReferenceFilter,
) (refs []Reference, inverseSplit int) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	k := key(id)

	var fwd, inv []Reference
	if direction == BrowseDirectionForward || direction == BrowseDirectionBoth {
		fwd = a.filterReferences(a.forward[k], filter)
	}
	if direction == BrowseDirectionInverse || direction == BrowseDirectionBoth {
		inv = a.filterReferences(a.inverse[k], filter)
	}

	merged := make([]Reference, 0, len(fwd)+len(inv))
	merged = append(merged, fwd...)
	merged = append(merged, inv...)
	return merged, len(fwd)
}

func (a *AddressSpace) filterReferences(refs []Reference, filter *ReferenceFilter) []Reference {
	if filter == nil || filter.ReferenceTypeID.IsNull() {
		out := make([]Reference, len(refs))
		copy(out, refs)
		return out
	}

	out := make([]Reference, 0, len(refs))
	for _, r := range refs {
		if r.ReferenceTypeID.Equal(filter.ReferenceTypeID) {
			out = append(out, r)
			continue
		}
		if filter.IncludeSubtypes && a.isSubtypeLocked(r.ReferenceTypeID, filter.ReferenceTypeID) {
			out = append(out, r)
		}
	}
	return out
}

// isSubtypeLocked walks the HasSubtype tree rooted at ancestor, looking
// for candidate. Callers must already hold a.mu.
func (a *AddressSpace) isSubtypeLocked(candidate, ancestor types.NodeId) bool {
	visited := map[string]bool{}
	var walk func(types.NodeId) bool
	walk = func(current types.NodeId) bool {
		k := key(current)
		if visited[k] {
			return false
		}
		visited[k] = true
		for _, r := range a.forward[k] {
			if !r.ReferenceTypeID.Equal(ReferenceTypeHasSubtype) {
				continue
			}
			if r.TargetID.Equal(candidate) {
				return true
			}
			if walk(r.TargetID) {
				return true
			}
		}
		return false
	}
	return walk(ancestor)
}

// RelativePathElement is one step of a RelativePath (spec §4.3): follow
// references of referenceType (and its subtypes, if IncludeSubtypes) in
// the given direction, keeping only targets whose browse name matches
// TargetName.
type RelativePathElement struct {
	ReferenceType   types.NodeId
	IsInverse       bool
	IncludeSubtypes bool
	TargetName      types.QualifiedName
}

// FindNodesRelativePath resolves path starting at start, exploring
// breadth-first so every branch at an ambiguous intermediate element is
// followed (spec §4.3's "Ordering & tie-breaks"). It fails with
// ErrNodeNotFound if start is absent, or ErrEmptyPathResult if no
// terminal node's browse name matches the final element.
func (a *AddressSpace) FindNodesRelativePath(start types.NodeId, path []RelativePathElement) ([]types.NodeId, error) {
	if !a.NodeExists(start) {
		return nil, ErrNodeNotFound
	}
	if len(path) == 0 {
		return nil, ErrEmptyPathResult
	}

	frontier := []types.NodeId{start}
	for _, elem := range path {
		direction := BrowseDirectionForward
		if elem.IsInverse {
			direction = BrowseDirectionInverse
		}
		filter := &ReferenceFilter{ReferenceTypeID: elem.ReferenceType, IncludeSubtypes: elem.IncludeSubtypes}

		var next []types.NodeId
		seen := map[string]bool{}
		for _, node := range frontier {
			refs, _ := a.FindReferencesByDirection(node, direction, filter)
			for _, r := range refs {
				target, ok := a.FindNode(r.TargetID)
				if !ok {
					continue
				}
				if !qualifiedNameEqual(target.BrowseName, elem.TargetName) {
					continue
				}
				k := key(target.NodeId)
				if !seen[k] {
					seen[k] = true
					next = append(next, target.NodeId)
				}
			}
		}
		frontier = next
		if len(frontier) == 0 {
			return nil, ErrEmptyPathResult
		}
	}
	return frontier, nil
}

func qualifiedNameEqual(a, b types.QualifiedName) bool {
	return a.NamespaceIndex == b.NamespaceIndex && a.Name.String() == b.Name.String()
}
