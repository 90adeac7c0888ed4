package protocol

import "testing"

func TestCRC16(t *testing.T) {
	tests := []struct {
		data []byte
		want uint16
	}{
		{[]byte{}, 0xffff},
		{[]byte("123456789"), 0x6f91},
		{[]byte{FrameMin, Dest}, 0x9e81},
	}
	for _, tt := range tests {
		if got := CRC16(tt.data); got != tt.want {
			t.Errorf("CRC16(%q) = %#04x, want %#04x", tt.data, got, tt.want)
		}
	}
}

func TestCRC16Different(t *testing.T) {
	if CRC16([]byte{1, 2, 3}) == CRC16([]byte{1, 2, 4}) {
		t.Error("single-bit change not detected")
	}
}
