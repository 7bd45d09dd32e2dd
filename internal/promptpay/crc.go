package promptpay

// Checksum computes CRC-16/CCITT-FALSE (poly 0x1021, seed 0xFFFF, no
// reflection, no final XOR) over the payload bytes. This is the checksum
// variant EMVCo QR payloads carry in their trailing 63 04 field.
func Checksum(payload string) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < len(payload); i++ {
		x := byte(crc>>8) ^ payload[i]
		x ^= x >> 4
		crc = (crc << 8) ^ (uint16(x) << 12) ^ (uint16(x) << 5) ^ uint16(x)
	}
	return crc
}
