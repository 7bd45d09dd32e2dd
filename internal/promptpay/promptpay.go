// Package promptpay encodes and parses Thai PromptPay QR payloads.
//
// A payload is ASCII text built from Tag-Length-Value groups (2-digit tag,
// 2-digit zero-padded byte length, value) and terminated by a CRC-16/
// CCITT-FALSE checksum under tag 63. The package has no dependencies on the
// rest of the service; Encode and Parse are pure functions.
package promptpay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tags used by the payload, per the EMVCo merchant-presented QR layout.
const (
	tagPayloadFormat  = "00"
	tagPointOfInit    = "01"
	tagMerchantInfo   = "29"
	tagAmount         = "54"
	tagCountry        = "58"
	tagCurrency       = "53"
	tagChecksum       = "63"
	subTagAID         = "00"
	subTagMobile      = "01"
	subTagNationalID  = "02"
	promptPayAID      = "A000000677010111"
	countryTH         = "TH"
	currencyTHBNumber = "764" // ISO 4217 numeric code for THB
)

// IDType classifies a sanitized payee identifier.
type IDType string

const (
	// IDTypeMobile is a Thai mobile number, embedded with the leading 0
	// replaced by the 66 country code.
	IDTypeMobile IDType = "MOBILE"

	// IDTypeNationalID is a 13-digit citizen/tax id, embedded as-is.
	IDTypeNationalID IDType = "NATIONAL_ID"
)

// ErrUnsupportedID means the payee identifier sanitizes to an unusable digit
// count. It is a recoverable "not ready yet" condition: callers should
// suppress QR rendering and prompt for correction rather than fail.
var ErrUnsupportedID = errors.New("payee id must be a 10-digit mobile number or 13-digit national id")

// Encode builds a scannable PromptPay payload for the payee identifier.
// A nil or non-positive amount yields a static QR (reusable, scanner asks
// for the amount); a positive amount yields a dynamic QR preloaded with the
// amount formatted to exactly 2 decimals.
func Encode(target string, amount *float64) (string, error) {
	digits := sanitize(target)

	var accountField string
	switch {
	case len(digits) == 13:
		accountField = tlv(subTagNationalID, digits)
	case len(digits) >= 10 && len(digits) < 13:
		msisdn := digits
		if strings.HasPrefix(msisdn, "0") {
			msisdn = "66" + msisdn[1:]
		}
		accountField = tlv(subTagMobile, "00"+msisdn)
	default:
		return "", ErrUnsupportedID
	}

	hasAmount := amount != nil && *amount > 0

	var b strings.Builder
	b.WriteString(tlv(tagPayloadFormat, "01"))
	if hasAmount {
		b.WriteString(tlv(tagPointOfInit, "12"))
	} else {
		b.WriteString(tlv(tagPointOfInit, "11"))
	}
	b.WriteString(tlv(tagMerchantInfo, tlv(subTagAID, promptPayAID)+accountField))
	b.WriteString(tlv(tagCountry, countryTH))
	b.WriteString(tlv(tagCurrency, currencyTHBNumber))
	if hasAmount {
		b.WriteString(tlv(tagAmount, strconv.FormatFloat(*amount, 'f', 2, 64)))
	}
	b.WriteString(tagChecksum + "04")

	payload := b.String()
	return payload + fmt.Sprintf("%04X", Checksum(payload)), nil
}

// tlv renders one Tag-Length-Value group. Values are ASCII so the byte
// length equals the string length.
func tlv(tag, value string) string {
	return fmt.Sprintf("%s%02d%s", tag, len(value), value)
}

// sanitize strips every non-digit character.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
