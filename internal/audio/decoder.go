package audio

// Decoder converts a recording artifact into LINEAR16 PCM suitable for
// batch speech recognition.
type Decoder interface {
	DecodePCM(recording []byte) ([]byte, error)
}
