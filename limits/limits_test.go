package limits

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePlaintextMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr error
	}{
		{"empty", "", ErrMessageEmpty},
		{"single byte", "x", nil},
		{"at limit", strings.Repeat("a", MaxPlaintextMessage), nil},
		{"over limit", strings.Repeat("a", MaxPlaintextMessage+1), ErrMessageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePlaintextMessage(tt.message)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMessageSize(t *testing.T) {
	if err := ValidateMessageSize(nil, 10); !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("nil message: got %v", err)
	}
	if err := ValidateMessageSize(make([]byte, 11), 10); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("oversized message: got %v", err)
	}
	if err := ValidateMessageSize(make([]byte, 10), 10); err != nil {
		t.Errorf("message at limit: got %v", err)
	}
}

func TestValidateVideoDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		ok            bool
	}{
		{"vga", 640, 480, true},
		{"max", MaxFrameWidth, MaxFrameHeight, true},
		{"zero width", 0, 480, false},
		{"zero height", 640, 0, false},
		{"too wide", MaxFrameWidth + 1, 480, false},
		{"too tall", 640, MaxFrameHeight + 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVideoDimensions(tt.width, tt.height)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrFrameGeometry) {
				t.Fatalf("expected ErrFrameGeometry, got %v", err)
			}
		})
	}
}

func TestValidatePlane(t *testing.T) {
	// 4 rows, stride 8, width 6: last row only needs 6 bytes.
	if err := ValidatePlane(make([]byte, 3*8+6), 4, 8, 6); err != nil {
		t.Errorf("exact plane rejected: %v", err)
	}
	if err := ValidatePlane(make([]byte, 3*8+5), 4, 8, 6); !errors.Is(err, ErrFrameGeometry) {
		t.Errorf("short plane accepted: %v", err)
	}
	if err := ValidatePlane(nil, 0, 8, 6); err != nil {
		t.Errorf("zero rows rejected: %v", err)
	}
}

func TestValidateAudioFrame(t *testing.T) {
	pcm := make([]int16, 960*2)

	if err := ValidateAudioFrame(pcm, 960, 2); err != nil {
		t.Errorf("valid stereo frame rejected: %v", err)
	}
	if err := ValidateAudioFrame(pcm, 961, 2); !errors.Is(err, ErrFrameGeometry) {
		t.Errorf("short pcm accepted: %v", err)
	}
	if err := ValidateAudioFrame(pcm, 960, 0); !errors.Is(err, ErrFrameGeometry) {
		t.Errorf("zero channels accepted: %v", err)
	}
	if err := ValidateAudioFrame(pcm, 960, 3); !errors.Is(err, ErrFrameGeometry) {
		t.Errorf("three channels accepted: %v", err)
	}
}

func TestValidateProfileSize(t *testing.T) {
	if err := ValidateProfileSize(MaxProfileSize); err != nil {
		t.Errorf("profile at limit rejected: %v", err)
	}
	if err := ValidateProfileSize(MaxProfileSize + 1); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("oversized profile accepted: %v", err)
	}
}
