package media

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate is the sample rate whisper models expect.
const SampleRate = 16000

const pcmFormat = 1

// IsPCM16kMono reports whether path is a 16-bit PCM WAV file at 16 kHz
// with a single channel, i.e. usable without conversion.
func IsPCM16kMono(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("media: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return false, nil
	}
	return dec.SampleRate == SampleRate &&
		dec.NumChans == 1 &&
		dec.BitDepth == 16 &&
		dec.WavAudioFormat == pcmFormat, nil
}

// WriteSilence writes d of 16 kHz mono 16-bit silence to path.
func WriteSilence(path string, d time.Duration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("media: create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, SampleRate, 16, 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           make([]int, int(d.Seconds()*SampleRate)),
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("media: encode silence: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("media: finalize wav: %w", err)
	}
	return f.Close()
}

// ReadSamples decodes a 16 kHz mono 16-bit PCM WAV file into float32
// samples normalized to [-1.0, 1.0].
func ReadSamples(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("media: open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("media: %s is not a valid wav file", path)
	}
	if dec.SampleRate != SampleRate || dec.NumChans != 1 {
		return nil, fmt.Errorf("media: %s is %dHz/%dch, want %dHz mono", path, dec.SampleRate, dec.NumChans, SampleRate)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("media: decode %s: %w", path, err)
	}

	samples := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		samples[i] = float32(s) / 32768.0
	}
	return samples, nil
}
