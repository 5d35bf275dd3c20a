package esme

import (
	"github.com/linxGnu/gosmpp/data"
	"github.com/linxGnu/gosmpp/pdu"
)

// Pure command/event mapping between the public surface and PDU values.
// Nothing in here touches session state.

// bindRequest builds the session-opening PDU variant selected by the
// configured mode.
func bindRequest(conf BindConfig, seq int32) *pdu.BindRequest {
	bp := pdu.NewBindRequest(conf.Mode.bindingType())
	bp.SystemID = conf.SystemId
	bp.Password = conf.Password
	bp.SystemType = conf.SystemType

	bp.AddressRange = pdu.NewAddressRangeWithTonNpi(conf.AddrTon, conf.AddrNpi)
	bp.SetSequenceNumber(seq)

	return bp
}

// submitRequest builds the submission PDU for one message. Only
// single-segment content is supported; anything longer is rejected here.
func submitRequest(m Message, seq int32) (*pdu.SubmitSM, error) {
	enc := m.Encoding
	if enc == nil {
		enc = data.GSM7BIT
	}

	if _, slices, _ := DetectMessage(m.Content); slices > 1 {
		return nil, ErrMessageTooLong
	}

	sm, err := pdu.NewShortMessageWithEncoding(m.Content, enc)
	if err != nil {
		return nil, err
	}

	p := pdu.NewSubmitSM().(*pdu.SubmitSM)
	p.SourceAddr = pduAddress(m.From)
	p.DestAddr = pduAddress(m.To)
	p.Message = sm
	if m.RequestDlr {
		p.RegisteredDelivery = 1
	}
	p.SetSequenceNumber(seq)

	return p, nil
}

// deliverEvent maps an inbound deliver PDU to the receive event handed to
// the session owner.
func deliverEvent(p *pdu.DeliverSM) (Message, error) {
	content, err := p.Message.GetMessage()
	if err != nil {
		return Message{}, err
	}

	return Message{
		Content: content,
		To:      didFromAddress(p.DestAddr),
		From:    didFromAddress(p.SourceAddr),
	}, nil
}

// ackPart maps a submit response to its caller-visible outcome.
func ackPart(p *pdu.SubmitSMResp) AckPart {
	return AckPart{
		Status:    p.CommandStatus,
		MessageId: p.MessageID,
	}
}

// genericNack builds the negative acknowledgement for a PDU kind the
// session does not serve, echoing the offending sequence number.
func genericNack(seq int32) pdu.PDU {
	p := pdu.NewGenericNack().(*pdu.GenericNack)
	p.CommandStatus = data.ESME_RINVCMDID
	p.SetSequenceNumber(seq)
	return p
}

// enquireLink builds a fire-and-forget liveness probe.
func enquireLink(seq int32) pdu.PDU {
	p := pdu.NewEnquireLink()
	p.SetSequenceNumber(seq)
	return p
}

// isDlr reports whether an inbound deliver carries a delivery receipt
// rather than a mobile-originated message.
func isDlr(p *pdu.DeliverSM) bool {
	return p.EsmClass&data.SM_SMSC_DLV_RCPT_TYPE != 0
}

func pduAddress(d Did) pdu.Address {
	a := pdu.NewAddress()
	a.SetTon(d.Ton)
	a.SetNpi(d.Npi)
	_ = a.SetAddress(d.Number)
	return a
}

func didFromAddress(a pdu.Address) Did {
	return Did{
		Number: a.Address(),
		Ton:    a.Ton(),
		Npi:    a.Npi(),
	}
}
