package whisper

import "encoding/binary"

// pcmToFloat32 converts little-endian 16-bit signed PCM bytes to normalized
// float32 samples in [-1, 1), the input format the whisper.cpp bindings
// operate on. A trailing odd byte is ignored.
func pcmToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		out[i] = float32(sample) / 32768.0
	}
	return out
}

// pcmToFloat32Mono converts interleaved multi-channel 16-bit PCM to a mono
// float32 stream by averaging the channels per frame. channels must be >= 1;
// with a single channel it is equivalent to pcmToFloat32.
func pcmToFloat32Mono(pcm []byte, channels int) []float32 {
	if channels <= 1 {
		return pcmToFloat32(pcm)
	}
	frames := len(pcm) / (2 * channels)
	out := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sample := int16(binary.LittleEndian.Uint16(pcm[(f*channels+c)*2:]))
			sum += float32(sample) / 32768.0
		}
		out[f] = sum / float32(channels)
	}
	return out
}
