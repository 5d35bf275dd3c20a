package esme

// Session states.
const (
	StateConnecting int32 = iota
	StateAwaitingBind
	StateBinding
	StateBound
	StateTerminated
)

// Close reasons passed to OnClosed.
const (
	CloseByError    = "error"
	CloseByBind     = "bind"
	CloseByPdu      = "pdu"
	CloseByExplicit = "explicit"
)

// Sequence numbers run 1..0x7FFFFFFF. The high bit is reserved by the
// protocol, so the allocator wraps back to 1 past this value.
const maxSequence = 0x7FFFFFFF

func stateName(state int32) string {
	switch state {
	case StateConnecting:
		return "connecting"
	case StateAwaitingBind:
		return "awaiting-bind"
	case StateBinding:
		return "binding"
	case StateBound:
		return "bound"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}
