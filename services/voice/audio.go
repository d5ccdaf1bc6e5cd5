package voice

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const (
	// MaxAudioBytes caps one utterance upload (conservative buffer).
	MaxAudioBytes = 5 * 1024 * 1024
	targetRate    = 16000
)

type waveHeader struct {
	RiffTag       [4]byte
	FileSize      uint32
	WaveTag       [4]byte
	FmtTag        [4]byte
	FmtSize       uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataTag       [4]byte
	DataSize      uint32
}

func parseWaveHeader(data []byte) (*waveHeader, error) {
	if len(data) < 44 {
		return nil, errors.New("invalid WAV header length")
	}
	var header waveHeader
	buf := bytes.NewReader(data)
	if err := binary.Read(buf, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.RiffTag[:]) != "RIFF" || string(header.WaveTag[:]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE stream")
	}
	return &header, nil
}

// prepareAudio validates a WAV payload and resamples it to 16kHz mono
// LINEAR16 when needed. Returns audio ready for the recognizer.
func prepareAudio(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty audio payload")
	}
	if len(data) > MaxAudioBytes {
		return nil, fmt.Errorf("audio payload exceeds %d bytes", MaxAudioBytes)
	}

	header, err := parseWaveHeader(data)
	if err != nil {
		return nil, fmt.Errorf("audio validation failed: %w", err)
	}

	if header.SampleRate == targetRate && header.NumChannels == 1 && header.AudioFormat == 1 {
		return data, nil
	}
	return convertAudio(data)
}

// convertAudio shells out to ffmpeg to resample to mono 16kHz pcm_s16le.
func convertAudio(data []byte) ([]byte, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found in system PATH: %v", err)
	}

	tempInput, err := os.CreateTemp("", "audio-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempInput.Name())
	defer tempInput.Close()
	if _, err := tempInput.Write(data); err != nil {
		return nil, fmt.Errorf("failed to save audio file: %w", err)
	}

	tempOutput, err := os.CreateTemp("", "converted-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create output temp file: %w", err)
	}
	defer os.Remove(tempOutput.Name())
	defer tempOutput.Close()

	cmd := exec.Command("ffmpeg",
		"-y",
		"-i", tempInput.Name(),
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		tempOutput.Name(),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %s", stderr.String())
	}

	converted, err := os.ReadFile(tempOutput.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to read converted audio: %w", err)
	}
	return converted, nil
}
