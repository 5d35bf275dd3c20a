package esme

import (
	"strings"
	"testing"

	"github.com/linxGnu/gosmpp/data"
	"github.com/linxGnu/gosmpp/pdu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindRequestModes(t *testing.T) {
	conf := BindConfig{
		SystemId:   "sys",
		Password:   "pw",
		SystemType: "st",
		AddrTon:    2,
		AddrNpi:    3,
	}

	for mode, want := range map[BindMode]pdu.BindingType{
		BindTransceiver: pdu.Transceiver,
		BindTransmitter: pdu.Transmitter,
		BindReceiver:    pdu.Receiver,
	} {
		conf.Mode = mode
		bp := bindRequest(conf, 7)
		assert.Equal(t, want, bp.BindingType)
		assert.Equal(t, "sys", bp.SystemID)
		assert.Equal(t, "pw", bp.Password)
		assert.Equal(t, "st", bp.SystemType)
		assert.EqualValues(t, 2, bp.AddressRange.Ton)
		assert.EqualValues(t, 3, bp.AddressRange.Npi)
		assert.EqualValues(t, 7, bp.GetSequenceNumber())
	}
}

func TestSubmitRequest(t *testing.T) {
	p, err := submitRequest(Message{
		Content: "hi",
		To:      NewDid("123"),
		From:    NewDid("456"),
	}, 9)
	require.NoError(t, err)

	assert.EqualValues(t, 9, p.GetSequenceNumber())
	assert.Equal(t, "456", p.SourceAddr.Address())
	assert.Equal(t, "123", p.DestAddr.Address())
	assert.EqualValues(t, 0, p.RegisteredDelivery)

	content, err := p.Message.GetMessage()
	require.NoError(t, err)
	assert.Equal(t, "hi", content)
}

func TestSubmitRequestDlrFlag(t *testing.T) {
	p, err := submitRequest(Message{
		Content:    "hi",
		To:         NewDid("123"),
		From:       NewDid("456"),
		RequestDlr: true,
	}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, p.RegisteredDelivery)
}

func TestSubmitRequestTooLong(t *testing.T) {
	_, err := submitRequest(Message{
		Content: strings.Repeat("a", 200),
		To:      NewDid("123"),
		From:    NewDid("456"),
	}, 1)
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestDeliverEvent(t *testing.T) {
	p := pdu.NewDeliverSM().(*pdu.DeliverSM)
	p.SourceAddr = Address(1, 1, "456")
	p.DestAddr = Address(1, 1, "123")
	p.Message = Gsm7bitMessage("hello")

	msg, err := deliverEvent(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, Did{Number: "456", Ton: 1, Npi: 1}, msg.From)
	assert.Equal(t, Did{Number: "123", Ton: 1, Npi: 1}, msg.To)
}

func TestAckPart(t *testing.T) {
	sp, err := submitRequest(Message{Content: "x", To: NewDid("1"), From: NewDid("2")}, 3)
	require.NoError(t, err)

	rp := sp.GetResponse().(*pdu.SubmitSMResp)
	rp.MessageID = "m1"

	part := ackPart(rp)
	assert.Equal(t, data.ESME_ROK, part.Status)
	assert.Equal(t, "m1", part.MessageId)
	assert.NoError(t, part.Err())
}

func TestGenericNack(t *testing.T) {
	p := genericNack(55)
	gn, ok := p.(*pdu.GenericNack)
	require.True(t, ok)
	assert.EqualValues(t, 55, gn.GetSequenceNumber())
	assert.Equal(t, data.ESME_RINVCMDID, gn.CommandStatus)
}

func TestEnquireLink(t *testing.T) {
	p := enquireLink(11)
	assert.EqualValues(t, 11, p.GetSequenceNumber())
	_, ok := p.(*pdu.EnquireLink)
	assert.True(t, ok)
}

func TestIsDlr(t *testing.T) {
	p := pdu.NewDeliverSM().(*pdu.DeliverSM)
	assert.False(t, isDlr(p))

	p.EsmClass = data.SM_SMSC_DLV_RCPT_TYPE
	assert.True(t, isDlr(p))
}
