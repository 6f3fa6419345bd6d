package session

import (
	"github.com/industrial-go/opcua/internal/ua/types"
)

// MessageType identifies a decoded request's service (spec §4.5).
// Dispatch routes on this value; it is deliberately distinct from the
// wire-level NodeId of a request's type (that mapping belongs to the
// codec layer building the request).
type MessageType string

const (
	MessageTypeGetEndpoints             MessageType = "GetEndpoints"
	MessageTypeCreateSession            MessageType = "CreateSession"
	MessageTypeCloseSession             MessageType = "CloseSession"
	MessageTypeActivateSession          MessageType = "ActivateSession"
	MessageTypeBrowse                   MessageType = "Browse"
	MessageTypeBrowseNext               MessageType = "BrowseNext"
	MessageTypeTranslateBrowsePaths     MessageType = "TranslateBrowsePathsToNodeIds"
	MessageTypeRead                     MessageType = "Read"
	MessageTypeWrite                    MessageType = "Write"
)

// exemptFromTokenValidation lists the requests spec §4.5 allows before
// a session has (or needs) a valid token.
var exemptFromTokenValidation = map[MessageType]bool{
	MessageTypeGetEndpoints:  true,
	MessageTypeCreateSession: true,
	MessageTypeCloseSession:  true,
}

// RequestHeader is the common header every decoded request carries
// (spec §4.5).
type RequestHeader struct {
	AuthenticationToken types.NodeId
	RequestHandle       uint32
	Timestamp           types.DateTime
}

// ResponseHeader echoes the client's request handle and timestamp and
// carries the overall service result (spec §4.5).
type ResponseHeader struct {
	Timestamp     types.DateTime
	RequestHandle uint32
	ServiceResult types.StatusCode
}

// ServiceFault is the response produced when dispatch itself rejects a
// request — a bad token, an unsupported message type — rather than the
// service handler running and failing on its own terms (spec §7:
// "wrapped into a ServiceFault(request_header, status) and returned as
// a valid response — the channel stays open").
type ServiceFault struct {
	ResponseHeader ResponseHeader
}

func newServiceFault(header RequestHeader, status types.StatusCode) *ServiceFault {
	return &ServiceFault{
		ResponseHeader: ResponseHeader{
			Timestamp:     header.Timestamp,
			RequestHandle: header.RequestHandle,
			ServiceResult: status,
		},
	}
}

// Handler processes one decoded request body for an active session and
// returns its response value. Handlers never see dispatch-layer
// concerns (token validation, unsupported-type rejection); by the time
// one runs, the request has already passed those checks.
type Handler func(s *Session, body any) (response any, err error)

// Dispatcher routes decoded requests to registered Handlers, enforcing
// the authentication-token validation contract of spec §4.5. Grounded
// on the Rust original's MessageHandler.handle_message /
// validate_request pair: the same "exempt-list, else compare token,
// else terminate+fault" shape, adapted to Go's explicit-return style in
// place of that code's Result<_, SupportedMessage> early-return pattern.
type Dispatcher struct {
	handlers map[MessageType]Handler
}

// NewDispatcher returns a Dispatcher with no handlers registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[MessageType]Handler)}
}

// Register installs the handler for msgType, replacing any previous
// registration.
func (d *Dispatcher) Register(msgType MessageType, h Handler) {
	d.handlers[msgType] = h
}

// Dispatch validates the token (unless msgType is exempt), resolves the
// handler, and runs it. A non-nil ServiceFault return always means the
// caller should send that fault in place of whatever the handler would
// have produced; handler errors are returned as-is for the caller to
// translate into its own fault.
func (d *Dispatcher) Dispatch(msgType MessageType, s *Session, header RequestHeader, body any) (response any, fault *ServiceFault, err error) {
	if !exemptFromTokenValidation[msgType] {
		if s == nil || !s.MatchesToken(header.AuthenticationToken) {
			if s != nil {
				s.MarkTerminate()
			}
			return nil, newServiceFault(header, types.BadIdentityTokenRejected), nil
		}
	}

	h, ok := d.handlers[msgType]
	if !ok {
		return nil, newServiceFault(header, types.BadServiceUnsupported), nil
	}

	resp, err := h(s, body)
	if err != nil {
		return nil, nil, err
	}
	return resp, nil, nil
}
