// Package session implements OPC UA session lifecycle and service
// dispatch (spec §4.5): session creation/lookup, the authentication
// token validation contract every non-exempt request must satisfy, and
// routing decoded requests to their service handler.
package session
