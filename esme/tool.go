package esme

import (
	"strings"
	"unicode/utf8"

	"github.com/linxGnu/gosmpp/data"
	"github.com/linxGnu/gosmpp/pdu"
)

// Address builds a PDU address from a TON/NPI pair and number. Common
// pairings: (1,1) international E.164, (2,1) national, (5,0) alphanumeric
// sender id, (6,0) short code.
func Address(ton byte, npi byte, addr string) pdu.Address {
	ret := pdu.NewAddress()
	ret.SetTon(ton)
	ret.SetNpi(npi)
	_ = ret.SetAddress(addr)
	return ret
}

func ShortMessage(s string) pdu.ShortMessage {
	sm, _ := pdu.NewShortMessageWithEncoding(s, data.FindEncoding(s))
	return sm
}

func Gsm7bitMessage(s string) pdu.ShortMessage {
	sm, _ := pdu.NewShortMessageWithEncoding(s, data.GSM7BIT)
	return sm
}

func Ucs2Message(s string) pdu.ShortMessage {
	sm, _ := pdu.NewShortMessageWithEncoding(s, data.UCS2)
	return sm
}

func BinaryMessage(s []byte) pdu.ShortMessage {
	sm, _ := pdu.NewBinaryShortMessageWithEncoding(s, data.BINARY8BIT2)
	return sm
}

const (
	Gsm7bitBasicChars = " .,:;!?'()+-*/_%&#<=>@£$¥\"\n\r\fØøÅåΔΦΓΛΩΠΨΣΘΞÆæßÉ¤ÄÖÑÜ§¿äöñüàèéùìòÇ"
	Gsm7bitExtraChars = "[]{}^~|€\\"
)

// DetectMessage returns the effective length, the segment count and whether
// the content fits the GSM 7-bit basic alphabet.
func DetectMessage(s string) (int, int, bool) {
	isGsm := true
	extra := 0
	for _, r := range s {
		if !IsGsm7bitBasicChar(r) {
			if IsGsm7bitExtraChar(r) {
				extra++
			} else {
				isGsm = false
				break
			}
		}
	}

	var msgLen, maxLen, segLen int
	if isGsm {
		msgLen = utf8.RuneCountInString(s) + extra
		maxLen = 160
		segLen = 153
	} else {
		msgLen = utf8.RuneCountInString(s)
		maxLen = 70
		segLen = 67
	}

	slices := 1
	if msgLen > maxLen {
		offset := 0
		if msgLen%segLen > 0 {
			offset = 1
		}
		slices = msgLen/segLen + offset
	}

	return msgLen, slices, isGsm
}

func IsGsm7bitBasicChar(r rune) bool {
	if r >= 'a' && r <= 'z' {
		return true
	}
	if r >= '0' && r <= '9' {
		return true
	}
	if r >= 'A' && r <= 'Z' {
		return true
	}
	return strings.ContainsRune(Gsm7bitBasicChars, r)
}

func IsGsm7bitExtraChar(r rune) bool {
	return strings.ContainsRune(Gsm7bitExtraChars, r)
}
