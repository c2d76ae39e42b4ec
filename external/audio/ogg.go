package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	oggCapturePattern   = "OggS"
	oggHeaderFixedBytes = 27
)

// oggPackets walks the Ogg pages of a recording and returns the logical
// packets, reassembling packets that span page boundaries. Ogg framing only;
// the payload codec is not interpreted here.
func oggPackets(data []byte) ([][]byte, error) {
	var packets [][]byte
	var pending []byte
	offset := 0
	for offset < len(data) {
		if len(data)-offset < oggHeaderFixedBytes {
			return nil, fmt.Errorf("truncated ogg page header at offset %d", offset)
		}
		header := data[offset:]
		if !bytes.Equal(header[:4], []byte(oggCapturePattern)) {
			return nil, fmt.Errorf("bad ogg capture pattern at offset %d", offset)
		}
		if header[4] != 0 {
			return nil, fmt.Errorf("unsupported ogg version %d", header[4])
		}
		segmentCount := int(header[26])
		if len(data)-offset < oggHeaderFixedBytes+segmentCount {
			return nil, fmt.Errorf("truncated ogg segment table at offset %d", offset)
		}
		lacing := header[oggHeaderFixedBytes : oggHeaderFixedBytes+segmentCount]
		payloadStart := offset + oggHeaderFixedBytes + segmentCount

		payloadLen := 0
		for _, l := range lacing {
			payloadLen += int(l)
		}
		if len(data)-payloadStart < payloadLen {
			return nil, fmt.Errorf("truncated ogg page payload at offset %d", payloadStart)
		}

		cursor := payloadStart
		for _, l := range lacing {
			pending = append(pending, data[cursor:cursor+int(l)]...)
			cursor += int(l)
			if l < 255 {
				packets = append(packets, pending)
				pending = nil
			}
		}
		offset = cursor
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("ogg stream ends mid-packet (%d bytes pending)", len(pending))
	}
	return packets, nil
}

// writePCM16LE appends samples to buf as little-endian 16-bit PCM.
func writePCM16LE(buf []byte, samples []int16) []byte {
	for _, s := range samples {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(s))
	}
	return buf
}

func isOpusHeaderPacket(packet []byte) bool {
	return bytes.HasPrefix(packet, []byte("OpusHead")) || bytes.HasPrefix(packet, []byte("OpusTags"))
}
