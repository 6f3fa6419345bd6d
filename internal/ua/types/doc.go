// Package types implements the OPC UA binary encoding rules (OPC UA Part 6)
// for the primitive and composite value kinds used across the stack: scalar
// numerics, strings, GUIDs, node identifiers, qualified/localized names,
// extension objects, variants, data values and diagnostic info.
//
// Every encodable type has an Encode method that writes to a Writer and
// returns the count written, and a Decode function that reads a value from
// a Reader. The fixed-shape types (Guid, DateTime, StatusCode, NodeId,
// UAString, ByteString, QualifiedName, LocalizedText) also have ByteLen,
// the exact number of bytes Encode will write; ExpandedNodeId,
// ExtensionObject, Variant, DataValue and DiagnosticInfo do not. All
// multi-byte scalars are little-endian.
package types
