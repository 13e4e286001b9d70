package channel

// State is a step in the link/handshake state machine (§4.3.1).
type State int

// States, in the order the handshake visits them.
const (
	StateDial State = iota
	StateSendLinkHeader
	StateSendLinkMessage
	StateReadReplyHeader
	StateReadReplyMessage
	StateAuthSelect
	StateSendTicket
	StateReadAuthReply
	StateReady
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDial:
		return "Dial"
	case StateSendLinkHeader:
		return "SendLinkHeader"
	case StateSendLinkMessage:
		return "SendLinkMessage"
	case StateReadReplyHeader:
		return "ReadReplyHeader"
	case StateReadReplyMessage:
		return "ReadReplyMessage"
	case StateAuthSelect:
		return "AuthSelect"
	case StateSendTicket:
		return "SendTicket"
	case StateReadAuthReply:
		return "ReadAuthReply"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}
