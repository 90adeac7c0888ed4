package core

// Itoa converts an integer to a string without using fmt
func Itoa(n int) string {
	if n < 0 {
		return "-" + utoa(uint32(-n))
	}
	return utoa(uint32(n))
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// Utoa is the exported form of utoa
func Utoa(n uint32) string {
	return utoa(n)
}

const hexDigits = "0123456789abcdef"

// hex32 formats n as 0x-prefixed hex with no leading zeros
func hex32(n uint32) string {
	if n == 0 {
		return "0x0"
	}
	var buf [10]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = hexDigits[n&0xf]
		n >>= 4
	}
	pos--
	buf[pos] = 'x'
	pos--
	buf[pos] = '0'
	return string(buf[pos:])
}

// Hex8 formats a byte as two hex digits
func Hex8(b uint8) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}
