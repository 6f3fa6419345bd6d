// Package addrspace implements the OPC UA address space (OPC UA Part 3):
// a typed node store plus a forward/inverse reference index and a
// relative-path resolver, used by the view service to answer Browse and
// TranslateBrowsePathsToNodeIds requests.
package addrspace
