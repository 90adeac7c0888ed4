package protocol

// CRC16 is CRC-16/MCRF4XX (0x1021 reflected, initial 0xffff) computed a byte
// at a time without a table.
func CRC16(data []byte) uint16 {
	crc := uint16(0xffff)
	for _, b := range data {
		b ^= uint8(crc)
		b ^= b << 4
		w := uint16(b)
		crc = (w<<8 | crc>>8) ^ (w >> 4) ^ (w << 3)
	}
	return crc
}
