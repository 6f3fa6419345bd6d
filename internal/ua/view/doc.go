// Package view implements the OPC UA view service (spec §4.6): Browse,
// BrowseNext, and TranslateBrowsePathsToNodeIds, built on top of the
// address space's reference index and relative-path resolver
// (internal/ua/addrspace).
package view
