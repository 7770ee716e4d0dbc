package main

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

const (
	sampleRate     = 44100
	channelCount   = 2
	bytesPerSample = 2 // signed 16-bit
	bytesPerSec    = sampleRate * channelCount * bytesPerSample

	// tapWindowBytes is how much recent PCM the meter can look back over,
	// a tenth of a second at the output rate.
	tapWindowBytes = bytesPerSec / 10
)

// ringBuffer is a thread-safe circular byte buffer holding the most recent
// PCM handed to the audio device.
type ringBuffer struct {
	buf  []byte
	w    int
	fill int
	mu   sync.Mutex
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{buf: make([]byte, size)}
}

// Write appends data, overwriting the oldest bytes when full.
func (rb *ringBuffer) Write(p []byte) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if len(p) >= len(rb.buf) {
		// Only the tail of an oversized write survives.
		copy(rb.buf, p[len(p)-len(rb.buf):])
		rb.w = 0
		rb.fill = len(rb.buf)
		return
	}

	head := copy(rb.buf[rb.w:], p)
	copy(rb.buf, p[head:])
	rb.w = (rb.w + len(p)) % len(rb.buf)
	rb.fill += len(p)
	if rb.fill > len(rb.buf) {
		rb.fill = len(rb.buf)
	}
}

// Recent returns up to n of the most recently written bytes, oldest first.
func (rb *ringBuffer) Recent(n int) []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if n > rb.fill {
		n = rb.fill
	}
	if n <= 0 {
		return nil
	}

	out := make([]byte, n)
	start := rb.w - n
	if start < 0 {
		start += len(rb.buf)
	}
	m := copy(out, rb.buf[start:])
	copy(out[m:], rb.buf)
	return out
}

// levelReader sits between the decoder and the audio device. It counts bytes
// for position reporting and copies everything it passes into the tap so the
// meter can inspect what is currently audible.
type levelReader struct {
	reader io.Reader
	tap    *ringBuffer
	pos    int64
	mu     sync.Mutex
}

func (lr *levelReader) Read(p []byte) (int, error) {
	n, err := lr.reader.Read(p)
	if n > 0 {
		lr.tap.Write(p[:n])
		lr.mu.Lock()
		lr.pos += int64(n)
		lr.mu.Unlock()
	}
	return n, err
}

func (lr *levelReader) Pos() int64 {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	return lr.pos
}

// player plays one MP3 file and exposes the PCM tap the meter reads from.
type player struct {
	file      *os.File
	decoder   *mp3.Decoder
	level     *levelReader
	otoPlayer *oto.Player
	duration  time.Duration
	done      chan struct{}
	mu        sync.Mutex
	closed    bool
}

var (
	audioOnce sync.Once
	audioCtx  *oto.Context
	audioErr  error
)

// audioContext returns the process-wide playback context, created on first
// use. oto allows only one context per process.
func audioContext() (*oto.Context, error) {
	audioOnce.Do(func() {
		var ready chan struct{}
		audioCtx, ready, audioErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		})
		if audioErr == nil {
			<-ready
		}
	})
	return audioCtx, audioErr
}

// byteDuration converts a count of decoded PCM bytes into playing time.
func byteDuration(n int64) time.Duration {
	return time.Duration(float64(n) / float64(bytesPerSec) * float64(time.Second))
}

func newPlayer(path string) (*player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := audioContext()
	if err != nil {
		f.Close()
		return nil, err
	}

	lr := &levelReader{
		reader: dec,
		tap:    newRingBuffer(tapWindowBytes),
	}

	p := &player{
		file:     f,
		decoder:  dec,
		level:    lr,
		duration: byteDuration(dec.Length()),
		done:     make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(lr)
	p.otoPlayer.Play()

	go p.monitor()

	return p, nil
}

func (p *player) monitor() {
	// Poll until the decoder runs dry or the player is closed.
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()

		if p.level.Pos() >= p.decoder.Length() {
			close(p.done)
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// Done returns a channel that closes once the track has played out.
func (p *player) Done() <-chan struct{} {
	return p.done
}

// Position reports how much of the track has been handed to the device.
func (p *player) Position() time.Duration {
	return byteDuration(p.level.Pos())
}

// Duration is the full length of the track.
func (p *player) Duration() time.Duration {
	return p.duration
}

// Close stops playback and releases the file.
func (p *player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	p.file.Close()
}
