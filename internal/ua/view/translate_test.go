package view_test

import (
	"testing"

	"github.com/industrial-go/opcua/internal/ua/addrspace"
	"github.com/industrial-go/opcua/internal/ua/types"
	"github.com/industrial-go/opcua/internal/ua/view"
)

func TestTranslateBrowsePathsResolvesRootToObjects(t *testing.T) {
	a, err := addrspace.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}

	results := view.TranslateBrowsePathsToNodeIds(a, []view.BrowsePath{
		{
			StartingNode: addrspace.NodeIDRootFolder,
			RelativePath: []addrspace.RelativePathElement{
				{ReferenceType: addrspace.ReferenceTypeOrganizes, TargetName: types.NewQualifiedName(0, "Objects")},
			},
		},
	})
	if len(results) != 1 {
		t.Fatalf("want 1 result, got %d", len(results))
	}
	r := results[0]
	if r.StatusCode != types.Good {
		t.Fatalf("want Good, got %s", r.StatusCode)
	}
	if len(r.Targets) != 1 {
		t.Fatalf("want 1 target, got %d", len(r.Targets))
	}
	if !r.Targets[0].TargetID.NodeId.Equal(addrspace.NodeIDObjectsFolder) {
		t.Fatalf("want ObjectsFolder, got %v", r.Targets[0].TargetID.NodeId)
	}
	if r.Targets[0].RemainingPathIndex != 0xFFFFFFFF {
		t.Fatalf("want fully-consumed sentinel, got %d", r.Targets[0].RemainingPathIndex)
	}
}

func TestTranslateBrowsePathsEmptyYieldsBadNothingToDo(t *testing.T) {
	a, err := addrspace.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}

	results := view.TranslateBrowsePathsToNodeIds(a, []view.BrowsePath{
		{StartingNode: addrspace.NodeIDRootFolder},
	})
	if results[0].StatusCode != types.BadNothingToDo {
		t.Fatalf("want BadNothingToDo, got %s", results[0].StatusCode)
	}
}

func TestTranslateBrowsePathsNoMatchYieldsBadNoMatch(t *testing.T) {
	a, err := addrspace.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}

	results := view.TranslateBrowsePathsToNodeIds(a, []view.BrowsePath{
		{
			StartingNode: addrspace.NodeIDRootFolder,
			RelativePath: []addrspace.RelativePathElement{
				{ReferenceType: addrspace.ReferenceTypeOrganizes, TargetName: types.NewQualifiedName(0, "Nope")},
			},
		},
	})
	if results[0].StatusCode != types.BadNoMatch {
		t.Fatalf("want BadNoMatch, got %s", results[0].StatusCode)
	}
}

func TestTranslateBrowsePathsUnknownStartYieldsBadNodeIdUnknown(t *testing.T) {
	a, err := addrspace.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}

	results := view.TranslateBrowsePathsToNodeIds(a, []view.BrowsePath{
		{
			StartingNode: types.NewNumericNodeId(9, 9999),
			RelativePath: []addrspace.RelativePathElement{
				{ReferenceType: addrspace.ReferenceTypeOrganizes, TargetName: types.NewQualifiedName(0, "Objects")},
			},
		},
	})
	if results[0].StatusCode != types.BadNodeIdUnknown {
		t.Fatalf("want BadNodeIdUnknown, got %s", results[0].StatusCode)
	}
}
