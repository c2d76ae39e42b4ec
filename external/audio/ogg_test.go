package audio

import (
	"bytes"
	"testing"
)

// buildPage assembles one Ogg page with the given lacing values and payload.
// CRC is left zero; the reader does not verify checksums.
func buildPage(t *testing.T, headerType byte, lacing []byte, payload []byte) []byte {
	t.Helper()
	total := 0
	for _, l := range lacing {
		total += int(l)
	}
	if total != len(payload) {
		t.Fatalf("lacing sums to %d but payload is %d bytes", total, len(payload))
	}
	page := []byte("OggS")
	page = append(page, 0, headerType)
	page = append(page, make([]byte, 8+4+4+4)...)
	page = append(page, byte(len(lacing)))
	page = append(page, lacing...)
	page = append(page, payload...)
	return page
}

func TestOggPackets_SplitsByLacing(t *testing.T) {
	payload := append(bytes.Repeat([]byte{0xAA}, 10), bytes.Repeat([]byte{0xBB}, 3)...)
	stream := buildPage(t, 0x02, []byte{10, 3}, payload)

	packets, err := oggPackets(stream)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(packets))
	}
	if !bytes.Equal(packets[0], bytes.Repeat([]byte{0xAA}, 10)) {
		t.Fatalf("unexpected first packet: %v", packets[0])
	}
	if !bytes.Equal(packets[1], bytes.Repeat([]byte{0xBB}, 3)) {
		t.Fatalf("unexpected second packet: %v", packets[1])
	}
}

func TestOggPackets_ReassemblesAcrossPages(t *testing.T) {
	// A 300-byte packet needs lacing 255+45; split it across two pages.
	packet := bytes.Repeat([]byte{0xCD}, 300)
	first := buildPage(t, 0x02, []byte{255}, packet[:255])
	second := buildPage(t, 0x01, []byte{45}, packet[255:])

	packets, err := oggPackets(append(first, second...))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(packets) != 1 {
		t.Fatalf("expected 1 reassembled packet, got %d", len(packets))
	}
	if !bytes.Equal(packets[0], packet) {
		t.Fatalf("reassembled packet differs: %d bytes", len(packets[0]))
	}
}

func TestOggPackets_RejectsBadCapturePattern(t *testing.T) {
	if _, err := oggPackets([]byte("NotAnOggStreamAtAll........")); err == nil {
		t.Fatal("expected error for bad capture pattern")
	}
}

func TestOggPackets_RejectsTruncatedStream(t *testing.T) {
	stream := buildPage(t, 0x02, []byte{10}, bytes.Repeat([]byte{0xAA}, 10))
	if _, err := oggPackets(stream[:len(stream)-4]); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func TestOggPackets_RejectsDanglingContinuation(t *testing.T) {
	stream := buildPage(t, 0x02, []byte{255}, bytes.Repeat([]byte{0xAA}, 255))
	if _, err := oggPackets(stream); err == nil {
		t.Fatal("expected error for stream ending mid-packet")
	}
}

func TestIsOpusHeaderPacket(t *testing.T) {
	cases := []struct {
		packet []byte
		want   bool
	}{
		{[]byte("OpusHead\x01\x02"), true},
		{[]byte("OpusTags\x00"), true},
		{[]byte{0xF8, 0xFF, 0xFE}, false},
	}
	for _, tc := range cases {
		if got := isOpusHeaderPacket(tc.packet); got != tc.want {
			t.Fatalf("isOpusHeaderPacket(%v) = %v, want %v", tc.packet[:3], got, tc.want)
		}
	}
}
