//go:build opus

package audio

import (
	"fmt"

	"github.com/hraban/opus"
	audiopkg "github.com/mindhaven/sessioncore/internal/audio"
)

const (
	sampleRate = 48000
	channels   = 2
	// Opus frames are at most 120ms.
	maxSamplesPerFrame = sampleRate * 120 * channels / 1000
)

type OggOpusDecoder struct{}

func NewOggOpusDecoder() audiopkg.Decoder {
	return &OggOpusDecoder{}
}

func (d *OggOpusDecoder) DecodePCM(recording []byte) ([]byte, error) {
	packets, err := oggPackets(recording)
	if err != nil {
		return nil, fmt.Errorf("parse recording container: %w", err)
	}

	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("create opus decoder: %w", err)
	}

	frame := make([]int16, maxSamplesPerFrame)
	var pcm []byte
	decoded := 0
	for _, packet := range packets {
		if len(packet) == 0 || isOpusHeaderPacket(packet) {
			continue
		}
		n, err := dec.Decode(packet, frame)
		if err != nil {
			return nil, fmt.Errorf("decode opus packet %d: %w", decoded, err)
		}
		if n > 0 {
			pcm = writePCM16LE(pcm, frame[:n*channels])
		}
		decoded++
	}
	if decoded == 0 {
		return nil, fmt.Errorf("recording contains no audio packets")
	}
	return pcm, nil
}
