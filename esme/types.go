package esme

import (
	"github.com/linxGnu/gosmpp/data"
	"github.com/linxGnu/gosmpp/pdu"
)

// BindMode selects which bind request variant a session opens with.
type BindMode byte

const (
	BindTransceiver BindMode = iota
	BindTransmitter
	BindReceiver
)

func (m BindMode) String() string {
	switch m {
	case BindTransmitter:
		return "transmitter"
	case BindReceiver:
		return "receiver"
	default:
		return "transceiver"
	}
}

func (m BindMode) bindingType() pdu.BindingType {
	switch m {
	case BindTransmitter:
		return pdu.Transmitter
	case BindReceiver:
		return pdu.Receiver
	default:
		return pdu.Transceiver
	}
}

// Did is a source or destination address together with its type of number
// and numbering plan. Plain value, compared and copied by field.
type Did struct {
	Number string
	Ton    byte
	Npi    byte
}

// NewDid returns an international E.164 address, the most common pairing.
func NewDid(number string) Did {
	return Did{Number: number, Ton: 1, Npi: 1}
}

// BindConfig carries the account credentials and role for the bind
// negotiation.
type BindConfig struct {
	SystemId   string
	Password   string
	SystemType string
	Mode       BindMode
	AddrTon    byte
	AddrNpi    byte
}

// Message is a single-segment short message. Encoding nil means GSM 7-bit.
type Message struct {
	Content    string
	To         Did
	From       Did
	Encoding   data.Encoding
	RequestDlr bool
}

// AckPart is the outcome of one submitted segment.
type AckPart struct {
	Status    data.CommandStatusType
	MessageId string
}

// Err returns nil for an accepted segment, otherwise the peer status.
func (p AckPart) Err() error {
	if p.Status == data.ESME_ROK {
		return nil
	}
	return NewStatusError(p.Status)
}

// Ack is the acknowledgement for one SendMessage call. Err is set only when
// no response was ever matched, e.g. the session terminated first.
type Ack struct {
	Parts []AckPart
	Err   error
}

// Ok reports whether every segment was accepted by the peer.
func (a Ack) Ok() bool {
	if a.Err != nil || len(a.Parts) == 0 {
		return false
	}
	for _, p := range a.Parts {
		if p.Status != data.ESME_ROK {
			return false
		}
	}
	return true
}

// Receipt delivers the ack of one SendMessage call. The channel receives
// exactly one value.
type Receipt struct {
	C <-chan Ack
}

// Wait blocks until the ack arrives.
func (r *Receipt) Wait() Ack {
	return <-r.C
}
