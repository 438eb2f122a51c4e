package asr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// ErrWAVFormat is wrapped by [ReadWAVFile] for files that are not 16-bit
// PCM RIFF/WAV.
var ErrWAVFormat = errors.New("asr: unsupported wav format")

// ReadWAVFile loads a 16-bit PCM RIFF/WAV file into a [Request] ready for
// [Provider.Transcribe]. Compressed or non-16-bit encodings are rejected.
func ReadWAVFile(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("asr: read %q: %w", path, err)
	}

	req, err := decodeWAV(data)
	if err != nil {
		return Request{}, fmt.Errorf("asr: decode %q: %w", path, err)
	}
	return req, nil
}

// decodeWAV walks the RIFF chunk list, reading the fmt sub-chunk for the
// audio parameters and the data sub-chunk for the PCM payload.
func decodeWAV(data []byte) (Request, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Request{}, fmt.Errorf("missing RIFF/WAVE header: %w", ErrWAVFormat)
	}

	var req Request
	sawFmt, sawData := false, false

	off := 12
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return Request{}, fmt.Errorf("truncated %q chunk: %w", id, ErrWAVFormat)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Request{}, fmt.Errorf("short fmt chunk: %w", ErrWAVFormat)
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return Request{}, fmt.Errorf("audio format %d is not PCM: %w", format, ErrWAVFormat)
			}
			req.Channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			req.SampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return Request{}, fmt.Errorf("%d bits per sample, want 16: %w", bits, ErrWAVFormat)
			}
			sawFmt = true
		case "data":
			req.PCM = data[body : body+size]
			sawData = true
		}

		// Chunks are word-aligned; odd sizes carry one padding byte.
		off = body + size + size%2
	}

	if !sawFmt || !sawData {
		return Request{}, fmt.Errorf("missing fmt or data chunk: %w", ErrWAVFormat)
	}
	return req, nil
}
