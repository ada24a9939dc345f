package canbus

import (
	"bytes"
	"testing"
)

func TestEncodeSLCANFrame(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{
			"extended with payload",
			Frame{ID: 0x0200FD0B, Len: 8, Extended: true,
				Data: [8]byte{0x80, 0x00, 0x7F, 0xFF, 0x81, 0x00, 0x01, 0x5E}},
			"T0200FD0B880007FFF8100015E\r",
		},
		{
			"extended empty payload",
			Frame{ID: 0x1FFFFFFF, Len: 0, Extended: true},
			"T1FFFFFFF0\r",
		},
		{
			"standard frame",
			Frame{ID: 0x123, Len: 2, Data: [8]byte{0xAB, 0xCD}},
			"t1232ABCD\r",
		},
	}
	for _, tt := range tests {
		got := encodeSLCANFrame(tt.frame)
		if !bytes.Equal(got, []byte(tt.want)) {
			t.Errorf("%s: encode = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDecodeSLCANFrame(t *testing.T) {
	f, err := decodeSLCANFrame([]byte("T0200FD0B880007FFF8100015E"))
	if err != nil {
		t.Fatal(err)
	}
	if !f.Extended || f.ID != 0x0200FD0B || f.Len != 8 {
		t.Errorf("decoded header = %+v", f)
	}
	want := [8]byte{0x80, 0x00, 0x7F, 0xFF, 0x81, 0x00, 0x01, 0x5E}
	if f.Data != want {
		t.Errorf("decoded data = %x, want %x", f.Data, want)
	}

	f, err = decodeSLCANFrame([]byte("t1232ABCD"))
	if err != nil {
		t.Fatal(err)
	}
	if f.Extended || f.ID != 0x123 || f.Len != 2 {
		t.Errorf("decoded standard header = %+v", f)
	}
}

func TestDecodeSLCANFrameRejectsGarbage(t *testing.T) {
	bad := [][]byte{
		nil,                                  // empty
		[]byte("z"),                          // status byte, not a frame
		[]byte("O"),                          // command echo
		[]byte("T0200FD"),                    // truncated id
		[]byte("T0200FD0B9"),                 // dlc out of range
		[]byte("T0200FD0B8AB"),               // payload shorter than dlc
		[]byte("T0200FD0B2ZZZZ"),             // non-hex payload
	}
	for _, line := range bad {
		if _, err := decodeSLCANFrame(line); err == nil {
			t.Errorf("decode(%q) should fail", line)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := Frame{ID: 0x13FD0B0C, Len: 8, Extended: true,
		Data: [8]byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}}

	line := encodeSLCANFrame(orig)
	got, err := decodeSLCANFrame(bytes.TrimSuffix(line, []byte{'\r'}))
	if err != nil {
		t.Fatal(err)
	}
	if got != orig {
		t.Errorf("round-trip = %+v, want %+v", got, orig)
	}
}
