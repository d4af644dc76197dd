//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"

	"github.com/palemoky/flip-seven/internal/logger"
)

const (
	sampleRate = beep.SampleRate(44100)
	soundDir   = "assets/sounds"
)

type SoundManager struct {
	mu      sync.RWMutex
	buffers map[string]*beep.Buffer
	enabled bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{buffers: make(map[string]*beep.Buffer)}
}

// Init opens the speaker, renders the built-in tones and loads any overrides from assets/sounds
func (sm *SoundManager) Init() error {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	for name, notes := range tones {
		buf, err := renderTone(notes)
		if err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		sm.buffers[name] = buf
	}

	if err := sm.loadSoundFiles(); err != nil {
		return err
	}

	sm.mu.Lock()
	sm.enabled = true
	sm.mu.Unlock()
	return nil
}

func renderTone(notes []note) (*beep.Buffer, error) {
	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2})
	for _, n := range notes {
		tone, err := generators.SineTone(sampleRate, n.freq)
		if err != nil {
			return nil, err
		}
		d := time.Duration(n.ms) * time.Millisecond
		buf.Append(beep.Take(sampleRate.N(d), tone))
	}
	return buf, nil
}

// loadSoundFiles replaces built-in tones with files named after a cue
func (sm *SoundManager) loadSoundFiles() error {
	files, err := os.ReadDir(soundDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		name := file.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}
		if err := sm.loadSoundFile(name, ext); err != nil {
			logger.LogDebug("skip sound %s: %v", name, err)
		}
	}
	return nil
}

func (sm *SoundManager) loadSoundFile(name, ext string) error {
	f, err := os.Open(filepath.Clean(filepath.Join(soundDir, name)))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 4})
	buffer.Append(resampled)

	sm.buffers[strings.TrimSuffix(name, filepath.Ext(name))] = buffer
	return nil
}

func (sm *SoundManager) Play(name string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.enabled {
		return
	}

	buffer, ok := sm.buffers[name]
	if !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (sm *SoundManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.enabled {
		sm.enabled = false
		speaker.Close()
	}
}
