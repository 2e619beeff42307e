package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"

	"meetscribe/internal/domain"
)

// DefaultSampleRate is the capture rate used across the pipeline.
const DefaultSampleRate = 16000

// DefaultFrameSize is the number of samples per frame (~256ms at 16 kHz).
const DefaultFrameSize = 4096

// PCMMimeType returns the streaming mime type for raw PCM at the given rate.
func PCMMimeType(sampleRate int) string {
	return fmt.Sprintf("audio/pcm;rate=%d", sampleRate)
}

// EncodePCM16 converts normalized samples into little-endian 16-bit PCM.
// Samples outside [-1, 1] are clamped, not rejected: brief clipping is
// normal device output.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(quantize(s)))
	}
	return out
}

// DecodePCM16 reverses EncodePCM16 within quantization error (<= 1/32768).
func DecodePCM16(data []byte) []float32 {
	out := make([]float32, len(data)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		if v < 0 {
			out[i] = float32(v) / 32768
		} else {
			out[i] = float32(v) / 32767
		}
	}
	return out
}

// EncodeFrame converts one block of normalized samples into a
// transport-ready frame for the live streaming envelope.
func EncodeFrame(samples []float32, sampleRate int) domain.EncodedFrame {
	return domain.EncodedFrame{
		MimeType: PCMMimeType(sampleRate),
		Data:     base64.StdEncoding.EncodeToString(EncodePCM16(samples)),
	}
}

// DecodeFrame recovers the normalized samples from an encoded frame.
func DecodeFrame(frame domain.EncodedFrame) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(frame.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid frame payload: %w", err)
	}
	return DecodePCM16(raw), nil
}

func quantize(s float32) int16 {
	if s < -1 {
		s = -1
	} else if s > 1 {
		s = 1
	}
	if s < 0 {
		return int16(math.Round(float64(s) * 32768))
	}
	return int16(math.Round(float64(s) * 32767))
}
