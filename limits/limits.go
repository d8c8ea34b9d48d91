// Package limits provides centralized size limits for everything the bot
// copies out of engine callbacks or hands back to the engines.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxPlaintextMessage is the Tox protocol limit for a single text message (1372 bytes).
	MaxPlaintextMessage = 1372

	// MaxFrameWidth is the widest video frame the relay will repack.
	MaxFrameWidth = 4096

	// MaxFrameHeight is the tallest video frame the relay will repack.
	MaxFrameHeight = 4096

	// MaxAudioChannels is the channel count ceiling for relayed PCM (Opus supports mono and stereo).
	MaxAudioChannels = 2

	// MaxAudioSamples bounds the per-channel sample count of one relayed frame
	// (120 ms at 48 kHz, the longest Opus frame).
	MaxAudioSamples = 5760

	// MaxProfileSize is the largest profile blob accepted from disk.
	// This prevents memory exhaustion from a corrupted or hostile data file (16MB limit).
	MaxProfileSize = 16 * 1024 * 1024
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")

	// ErrFrameGeometry indicates frame dimensions or plane sizes are out of bounds
	ErrFrameGeometry = errors.New("invalid frame geometry")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Returns an error with context including the actual and maximum sizes.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(message), maxSize)
	}
	return nil
}

// ValidatePlaintextMessage validates a chat message against MaxPlaintextMessage.
func ValidatePlaintextMessage(message string) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	if len(message) > MaxPlaintextMessage {
		return fmt.Errorf("%w: plaintext size %d exceeds limit %d", ErrMessageTooLarge, len(message), MaxPlaintextMessage)
	}
	return nil
}

// ValidateProfileSize validates a profile blob length against MaxProfileSize.
func ValidateProfileSize(size int64) error {
	if size > MaxProfileSize {
		return fmt.Errorf("%w: profile size %d exceeds limit %d", ErrMessageTooLarge, size, MaxProfileSize)
	}
	return nil
}

// ValidateVideoDimensions checks a frame's width and height against the
// relay ceilings. Zero-sized frames are rejected.
func ValidateVideoDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: empty frame %dx%d", ErrFrameGeometry, width, height)
	}
	if width > MaxFrameWidth || height > MaxFrameHeight {
		return fmt.Errorf("%w: frame %dx%d exceeds limit %dx%d", ErrFrameGeometry, width, height, MaxFrameWidth, MaxFrameHeight)
	}
	return nil
}

// ValidatePlane checks that a plane buffer holds rows*stride bytes, allowing
// the last row to stop right after its visible width.
func ValidatePlane(plane []byte, rows, stride, width int) error {
	if rows == 0 || width == 0 {
		return nil
	}
	need := (rows-1)*stride + width
	if len(plane) < need {
		return fmt.Errorf("%w: plane has %d bytes, need %d", ErrFrameGeometry, len(plane), need)
	}
	return nil
}

// ValidateAudioFrame checks sample count and channel layout against the PCM
// buffer actually supplied.
func ValidateAudioFrame(pcm []int16, sampleCount int, channels uint8) error {
	if sampleCount <= 0 || channels == 0 {
		return fmt.Errorf("%w: %d samples, %d channels", ErrFrameGeometry, sampleCount, channels)
	}
	if channels > MaxAudioChannels || sampleCount > MaxAudioSamples {
		return fmt.Errorf("%w: %d samples, %d channels exceeds limit", ErrFrameGeometry, sampleCount, channels)
	}
	if len(pcm) < sampleCount*int(channels) {
		return fmt.Errorf("%w: pcm has %d values, need %d", ErrFrameGeometry, len(pcm), sampleCount*int(channels))
	}
	return nil
}
