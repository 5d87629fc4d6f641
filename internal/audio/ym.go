package audio

import (
	"fmt"
	"io"

	"github.com/faiface/beep"
	"github.com/olivierh59500/ym-player/pkg/stsound"
)

// ymStream renders an Atari ST YM tune as a seekable beep stream. The
// emulator can only run forward, so seeking backwards reloads the tune.
type ymStream struct {
	data   []byte
	rate   int
	player *stsound.StSound
	buf    []int16
	pos    int
	total  int
	err    error
}

func decodeYM(r io.Reader, rate beep.SampleRate) (*ymStream, beep.Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, beep.Format{}, err
	}
	y := &ymStream{data: data, rate: int(rate), buf: make([]int16, 4096)}
	if err := y.load(); err != nil {
		return nil, beep.Format{}, err
	}
	info := y.player.GetInfo()
	y.total = int(int64(info.MusicTimeInMs) * int64(rate) / 1000)
	return y, beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}, nil
}

func (y *ymStream) load() error {
	if y.player != nil {
		y.player.Destroy()
	}
	player := stsound.CreateWithRate(y.rate)
	if err := player.LoadMemory(y.data); err != nil {
		player.Destroy()
		y.player = nil
		return fmt.Errorf("failed to load YM data: %w", err)
	}
	// Looping is done by beep.Loop so Position stays meaningful.
	player.SetLoopMode(false)
	y.player = player
	y.pos = 0
	return nil
}

func (y *ymStream) Stream(samples [][2]float64) (n int, ok bool) {
	if y.player == nil || y.pos >= y.total {
		return 0, false
	}
	for n < len(samples) && y.pos < y.total {
		chunk := min(len(samples)-n, len(y.buf), y.total-y.pos)
		more := y.player.Compute(y.buf[:chunk], chunk)
		for i := 0; i < chunk; i++ {
			v := float64(y.buf[i]) / 32768
			samples[n+i] = [2]float64{v, v}
		}
		n += chunk
		y.pos += chunk
		if !more {
			y.total = y.pos
			break
		}
	}
	return n, n > 0
}

func (y *ymStream) Err() error    { return y.err }
func (y *ymStream) Len() int      { return y.total }
func (y *ymStream) Position() int { return y.pos }

func (y *ymStream) Seek(p int) error {
	if p < 0 || p > y.total {
		return fmt.Errorf("ym: seek position %d out of range [0, %d]", p, y.total)
	}
	if p < y.pos {
		if err := y.load(); err != nil {
			y.err = err
			return err
		}
	}
	for y.pos < p {
		chunk := min(len(y.buf), p-y.pos)
		if !y.player.Compute(y.buf[:chunk], chunk) {
			y.pos += chunk
			break
		}
		y.pos += chunk
	}
	return nil
}

func (y *ymStream) Close() error {
	if y.player != nil {
		y.player.Destroy()
		y.player = nil
	}
	return nil
}
