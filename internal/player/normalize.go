package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	playbackSampleRate     = 44100
	playbackChannels       = 2
	playbackBytesPerSample = 2
	playbackFrameSize      = playbackChannels * playbackBytesPerSample
	bytesPerSec            = playbackSampleRate * playbackFrameSize
)

// normalizedDecoder presents a PCM decoder as a fixed 44.1 kHz stereo s16le
// stream, the format of the shared oto context. Mono is duplicated to both
// channels and other rates are linearly resampled.
//
// When the source length is known, exactly Length() bytes are produced: the
// final output frames hold the last source frame instead of interpolating
// past it. An unknown length (0) streams until the source is drained.
type normalizedDecoder struct {
	src          pcmDecoder
	length       int64
	srcRate      int
	srcChannels  int
	srcFrameSize int

	totalSrcFrames int64
	totalOutFrames int64
	outFramePos    int64
	srcPosNum      int64

	buf       []byte
	tmpOut    []byte
	tmpSrc    []byte
	srcFrames []int16

	srcBaseFrame int64
	lastFrame    [playbackChannels]int16
	haveLast     bool
}

// normalize wraps src in a normalizedDecoder unless it already matches the
// playback format.
func normalize(src pcmDecoder) (pcmDecoder, error) {
	sampleRate := src.SampleRate()
	if sampleRate <= 0 {
		return nil, fmt.Errorf("unsupported sample rate: %d", sampleRate)
	}
	channels := src.ChannelCount()
	if channels < 1 || channels > playbackChannels {
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
	if sampleRate == playbackSampleRate && channels == playbackChannels {
		return src, nil
	}

	srcFrameSize := channels * playbackBytesPerSample
	d := &normalizedDecoder{
		src:          src,
		srcRate:      sampleRate,
		srcChannels:  channels,
		srcFrameSize: srcFrameSize,
	}

	totalSrcFrames := src.Length() / int64(srcFrameSize)
	if totalSrcFrames <= 0 {
		d.totalSrcFrames = math.MaxInt64
		d.totalOutFrames = math.MaxInt64
		return d, nil
	}
	totalOutFrames := totalSrcFrames * playbackSampleRate / int64(sampleRate)
	if totalOutFrames == 0 {
		totalOutFrames = 1
	}
	d.totalSrcFrames = totalSrcFrames
	d.totalOutFrames = totalOutFrames
	d.length = totalOutFrames * playbackFrameSize
	return d, nil
}

func (d *normalizedDecoder) Length() int64     { return d.length }
func (d *normalizedDecoder) SampleRate() int   { return playbackSampleRate }
func (d *normalizedDecoder) ChannelCount() int { return playbackChannels }

func (d *normalizedDecoder) Read(p []byte) (int, error) {
	if len(d.buf) > 0 {
		n := copy(p, d.buf)
		d.buf = d.buf[n:]
		return n, nil
	}

	if d.outFramePos >= d.totalOutFrames {
		return 0, io.EOF
	}

	framesToGenerate := len(p) / playbackFrameSize
	if len(p)%playbackFrameSize != 0 {
		framesToGenerate++
	}
	if framesToGenerate == 0 {
		framesToGenerate = 1
	}
	if remaining := d.totalOutFrames - d.outFramePos; int64(framesToGenerate) > remaining {
		framesToGenerate = int(remaining)
	}

	raw, err := d.generateFrames(framesToGenerate)
	if len(raw) == 0 {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}

	n := copy(p, raw)
	if n < len(raw) {
		d.buf = append(d.buf[:0], raw[n:]...)
	}
	return n, nil
}

func (d *normalizedDecoder) generateFrames(frameCount int) ([]byte, error) {
	rawSize := frameCount * playbackFrameSize
	if cap(d.tmpOut) < rawSize {
		d.tmpOut = make([]byte, rawSize)
	}
	raw := d.tmpOut[:rawSize]

	writtenFrames := 0
	for writtenFrames < frameCount && d.outFramePos < d.totalOutFrames {
		srcFrame := d.srcPosNum / playbackSampleRate
		if srcFrame >= d.totalSrcFrames {
			break
		}

		if err := d.ensureFrameAvailable(srcFrame); err != nil {
			if errors.Is(err, io.EOF) {
				// Shorter than reported, or unknown length: the end is here.
				d.totalSrcFrames = srcFrame
				d.totalOutFrames = d.outFramePos
				break
			}
			return raw[:writtenFrames*playbackFrameSize], err
		}

		left0, right0, err := d.frameAt(srcFrame)
		if err != nil {
			return raw[:writtenFrames*playbackFrameSize], err
		}
		left1, right1 := left0, right0
		if srcFrame+1 < d.totalSrcFrames {
			switch err := d.ensureFrameAvailable(srcFrame + 1); {
			case errors.Is(err, io.EOF):
				d.totalSrcFrames = srcFrame + 1
			case err != nil:
				return raw[:writtenFrames*playbackFrameSize], err
			default:
				left1, right1, err = d.frameAt(srcFrame + 1)
				if err != nil {
					return raw[:writtenFrames*playbackFrameSize], err
				}
			}
		}

		fracNum := d.srcPosNum % playbackSampleRate
		outOffset := writtenFrames * playbackFrameSize
		binary.LittleEndian.PutUint16(raw[outOffset:], uint16(interpolateSample(left0, left1, fracNum)))
		binary.LittleEndian.PutUint16(raw[outOffset+2:], uint16(interpolateSample(right0, right1, fracNum)))

		writtenFrames++
		d.outFramePos++
		d.srcPosNum += int64(d.srcRate)
	}

	if writtenFrames == 0 {
		return nil, io.EOF
	}
	return raw[:writtenFrames*playbackFrameSize], nil
}

func (d *normalizedDecoder) ensureFrameAvailable(absFrame int64) error {
	if absFrame >= d.totalSrcFrames {
		return io.EOF
	}
	d.compactFrames(absFrame - 1)

	for absFrame >= d.srcBaseFrame+int64(len(d.srcFrames))/playbackChannels {
		if err := d.readMoreFrames(); err != nil {
			return err
		}
	}
	return nil
}

func (d *normalizedDecoder) compactFrames(minKeepFrame int64) {
	if minKeepFrame <= d.srcBaseFrame {
		return
	}
	availableFrames := int64(len(d.srcFrames)) / playbackChannels
	dropFrames := minKeepFrame - d.srcBaseFrame
	if dropFrames >= availableFrames {
		d.srcFrames = d.srcFrames[:0]
		d.srcBaseFrame += availableFrames
		return
	}

	dropSamples := int(dropFrames) * playbackChannels
	remaining := len(d.srcFrames) - dropSamples
	copy(d.srcFrames, d.srcFrames[dropSamples:])
	d.srcFrames = d.srcFrames[:remaining]
	d.srcBaseFrame += dropFrames
}

func (d *normalizedDecoder) readMoreFrames() error {
	const chunkFrames = 2048

	readSize := chunkFrames * d.srcFrameSize
	if cap(d.tmpSrc) < readSize {
		d.tmpSrc = make([]byte, readSize)
	}
	buf := d.tmpSrc[:readSize]

	n, err := io.ReadFull(d.src, buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		return err
	}

	frameCount := n / d.srcFrameSize
	if frameCount == 0 {
		return io.EOF
	}

	oldLen := len(d.srcFrames)
	needLen := oldLen + frameCount*playbackChannels
	if cap(d.srcFrames) < needLen {
		next := make([]int16, oldLen, max(needLen, oldLen*2+playbackChannels))
		copy(next, d.srcFrames)
		d.srcFrames = next
	}
	d.srcFrames = d.srcFrames[:needLen]
	dst := d.srcFrames[oldLen:needLen]

	switch d.srcChannels {
	case 1:
		for i := range frameCount {
			s := int16(binary.LittleEndian.Uint16(buf[i*2:]))
			dst[i*2] = s
			dst[i*2+1] = s
			d.lastFrame = [playbackChannels]int16{s, s}
		}
	case 2:
		for i := range frameCount {
			off := i * playbackFrameSize
			left := int16(binary.LittleEndian.Uint16(buf[off:]))
			right := int16(binary.LittleEndian.Uint16(buf[off+2:]))
			dst[i*2] = left
			dst[i*2+1] = right
			d.lastFrame = [playbackChannels]int16{left, right}
		}
	default:
		return fmt.Errorf("unsupported channel count: %d", d.srcChannels)
	}

	d.haveLast = true
	return nil
}

func (d *normalizedDecoder) frameAt(absFrame int64) (int16, int16, error) {
	if absFrame >= d.totalSrcFrames {
		if d.haveLast {
			return d.lastFrame[0], d.lastFrame[1], nil
		}
		return 0, 0, io.EOF
	}
	if absFrame < d.srcBaseFrame {
		return 0, 0, fmt.Errorf("frame %d fell behind buffered source data", absFrame)
	}

	offset := int(absFrame-d.srcBaseFrame) * playbackChannels
	if offset+1 >= len(d.srcFrames) {
		return 0, 0, io.EOF
	}
	return d.srcFrames[offset], d.srcFrames[offset+1], nil
}

func interpolateSample(a, b int16, fracNum int64) int16 {
	if fracNum == 0 || a == b {
		return a
	}
	diff := int64(int32(b) - int32(a))
	return int16(int64(int32(a)) + (diff*fracNum+playbackSampleRate/2)/playbackSampleRate)
}
