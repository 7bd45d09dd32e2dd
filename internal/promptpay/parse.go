package promptpay

import (
	"errors"
	"fmt"
	"strconv"
)

// Payload is the decoded form of a PromptPay QR string.
type Payload struct {
	// Static is true for reusable QRs (point of initiation 11); false when
	// the payload carries a transaction amount (12).
	Static bool

	// IDType says how the payee is identified.
	IDType IDType

	// Target is the embedded payee identifier: the 66-prefixed mobile
	// number or the 13-digit national id.
	Target string

	// Amount is the preloaded transaction amount, nil for static QRs.
	Amount *float64

	Country  string
	Currency string
}

// Parse errors. ErrBadChecksum means the trailing CRC does not match the
// payload; ErrMalformed covers every structural defect.
var (
	ErrBadChecksum = errors.New("promptpay: checksum mismatch")
	ErrMalformed   = errors.New("promptpay: malformed payload")
)

// Parse decodes a payload produced by Encode (or any compliant generator),
// verifying the trailing checksum. It is the inverse used by tests to check
// the round-trip property; the service itself only encodes.
func Parse(payload string) (*Payload, error) {
	if len(payload) < 8 {
		return nil, ErrMalformed
	}

	// The checksum field must be the final group: tag 63, length 04.
	body, check := payload[:len(payload)-4], payload[len(payload)-4:]
	if len(body) < 4 || body[len(body)-4:] != tagChecksum+"04" {
		return nil, fmt.Errorf("%w: missing checksum header", ErrMalformed)
	}
	want, err := strconv.ParseUint(check, 16, 16)
	if err != nil {
		return nil, fmt.Errorf("%w: checksum not hex", ErrMalformed)
	}
	if Checksum(body) != uint16(want) {
		return nil, ErrBadChecksum
	}

	fields, err := splitTLV(body[:len(body)-4])
	if err != nil {
		return nil, err
	}

	out := &Payload{Static: true}
	for _, f := range fields {
		switch f.tag {
		case tagPointOfInit:
			out.Static = f.value != "12"
		case tagMerchantInfo:
			if err := parseMerchantInfo(f.value, out); err != nil {
				return nil, err
			}
		case tagAmount:
			amt, err := strconv.ParseFloat(f.value, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: bad amount %q", ErrMalformed, f.value)
			}
			out.Amount = &amt
		case tagCountry:
			out.Country = f.value
		case tagCurrency:
			out.Currency = f.value
		}
	}
	if out.Target == "" {
		return nil, fmt.Errorf("%w: no payee account", ErrMalformed)
	}
	return out, nil
}

func parseMerchantInfo(value string, out *Payload) error {
	subs, err := splitTLV(value)
	if err != nil {
		return err
	}
	for _, s := range subs {
		switch s.tag {
		case subTagMobile:
			out.IDType = IDTypeMobile
			// The mobile field carries a fixed 00 leader before the digits.
			if len(s.value) < 2 {
				return fmt.Errorf("%w: short mobile field", ErrMalformed)
			}
			out.Target = s.value[2:]
		case subTagNationalID:
			out.IDType = IDTypeNationalID
			out.Target = s.value
		}
	}
	return nil
}

type field struct {
	tag   string
	value string
}

func splitTLV(s string) ([]field, error) {
	var fields []field
	for i := 0; i < len(s); {
		if i+4 > len(s) {
			return nil, fmt.Errorf("%w: truncated group header", ErrMalformed)
		}
		tag := s[i : i+2]
		length, err := strconv.Atoi(s[i+2 : i+4])
		if err != nil {
			return nil, fmt.Errorf("%w: bad length for tag %s", ErrMalformed, tag)
		}
		i += 4
		if i+length > len(s) {
			return nil, fmt.Errorf("%w: group %s overruns payload", ErrMalformed, tag)
		}
		fields = append(fields, field{tag: tag, value: s[i : i+length]})
		i += length
	}
	return fields, nil
}
