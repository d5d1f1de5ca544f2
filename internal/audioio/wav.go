// Package audioio writes and reads rendered audio and provides the level
// and resampling helpers used by the render tools.
package audioio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// WriteStereoInterleavedWAV writes interleaved stereo float samples as
// 16-bit PCM, creating parent directories as needed.
func WriteStereoInterleavedWAV(path string, samples []float32, sampleRate int) error {
	if len(samples)%2 != 0 {
		return fmt.Errorf("interleaved stereo needs an even sample count, got %d", len(samples))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: 2,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return nil
}

// ReadWAV returns the interleaved samples of a PCM WAV file scaled to
// [-1,1], with its channel count and sample rate.
func ReadWAV(path string) ([]float32, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, 0, fmt.Errorf("invalid wav buffer: %s", path)
	}
	// FullPCMBuffer already yields samples in [-1,1].
	out := make([]float32, len(buf.Data))
	copy(out, buf.Data)
	return out, buf.Format.NumChannels, buf.Format.SampleRate, nil
}
