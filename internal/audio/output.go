package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// SampleRate is the mixer rate; sources at other rates are resampled.
const SampleRate beep.SampleRate = 44100

var ErrNoDevice = errors.New("audio output unavailable")

// Output is the mixer every track plays into.
type Output interface {
	// Init prepares the device. It is safe to call repeatedly; a failure is
	// retried on the next call.
	Init() error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

type speakerOutput struct {
	mu    sync.Mutex
	ready bool
}

// Speaker is the process-wide beep speaker.
var Speaker Output = &speakerOutput{}

func (o *speakerOutput) Init() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ready {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/20)); err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	o.ready = true
	return nil
}

func (o *speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (o *speakerOutput) Lock()                { speaker.Lock() }
func (o *speakerOutput) Unlock()              { speaker.Unlock() }
