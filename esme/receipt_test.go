package esme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDlr(t *testing.T) {
	strs := []string{
		"id:1081737143648 sub:001 dlvrd:001 submit date:2605111200 done date:2605111200 stat:DELIVRD err:000 text:",
		"id:1081737143648 sub:001 dlvrd:001 submit date:260511120000 done date:260511120000 stat:DELIVRD err:000 text:",
		"id:1081737143648 sub:001 dlvrd:001 submit date:1767865032 done date:1767865032 stat:DELIVRD err:000 text:",
		"id:1081737143648 sub:001 dlvrd:001 submit date:1767865032314 done date:1767865032314 stat:DELIVRD err:000 text:",
	}

	for _, str := range strs {
		dlr, err := ParseDlr(str)
		require.NoError(t, err, str)
		assert.Equal(t, "1081737143648", dlr.Id)
		assert.Equal(t, DlrStatDelivered, dlr.Stat)
		assert.False(t, dlr.Sd.IsZero())
	}
}

func TestParseDlrInvalid(t *testing.T) {
	_, err := ParseDlr("stat:DELIVRD")
	assert.ErrorIs(t, err, ErrInvalidDlrFormat)

	_, err = ParseDlr("id:x sub:001 text:oops")
	assert.ErrorIs(t, err, ErrInvalidDlrFormat)
}

func TestBuildDlrRoundtrip(t *testing.T) {
	built := BuildDlr("abc-123", 1, 1, DlrStatUndeliverable, 50)

	parsed, err := ParseDlr(built.String())
	require.NoError(t, err)
	assert.Equal(t, "abc-123", parsed.Id)
	assert.Equal(t, "001", parsed.Sub)
	assert.Equal(t, "001", parsed.Dlvrd)
	assert.Equal(t, DlrStatUndeliverable, parsed.Stat)
	assert.Equal(t, "050", parsed.Err)
	assert.Equal(t, DlrStatUndeliverable, parsed.Text)
}

func TestBuildDlrNum(t *testing.T) {
	assert.Equal(t, "000", buildDlrNum(0))
	assert.Equal(t, "050", buildDlrNum(50))
	assert.Equal(t, "999", buildDlrNum(999))

	// out-of-range input must not widen the fixed 3-char field
	assert.Equal(t, "999", buildDlrNum(1000))
	assert.Equal(t, "999", buildDlrNum(-1))
}

func TestDlrPdu(t *testing.T) {
	built := BuildDlr("m77", 1, 1, DlrStatDelivered, 0)
	p := built.Pdu("BRAND", "123456")

	require.True(t, isDlr(p))
	assert.Equal(t, "BRAND", p.SourceAddr.Address())

	content, err := p.Message.GetMessage()
	require.NoError(t, err)

	parsed, err := ParseDlr(content)
	require.NoError(t, err)
	assert.Equal(t, "m77", parsed.Id)
}
