//go:build !opus

package audio

import (
	"fmt"

	audiopkg "github.com/mindhaven/sessioncore/internal/audio"
)

type stubDecoder struct{}

func NewOggOpusDecoder() audiopkg.Decoder {
	return &stubDecoder{}
}

func (d *stubDecoder) DecodePCM(_ []byte) ([]byte, error) {
	return nil, fmt.Errorf("opus decoding is not available in this build")
}
