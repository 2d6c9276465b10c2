package session

import (
	"errors"
	"testing"
)

func TestSessionError(t *testing.T) {
	err := WrapError("load video", ErrInvalidVideoURL, "https://example.com")
	if !errors.Is(err, ErrInvalidVideoURL) {
		t.Error("expected errors.Is to see the sentinel")
	}
	if err.Error() != "load video: invalid YouTube URL (https://example.com)" {
		t.Errorf("unexpected message %q", err.Error())
	}

	if NewError("chat", ErrChannelNotOpen).Error() != "chat: channel not open" {
		t.Error("unexpected message without details")
	}
}
