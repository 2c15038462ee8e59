package errs

import (
	"net/http"
	"testing"
)

func TestNewError_KnownCode(t *testing.T) {
	err := NewError(ErrRoomNotFound)

	if err.Code != ErrRoomNotFound {
		t.Errorf("Code = %d, want %d", err.Code, ErrRoomNotFound)
	}
	if err.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", err.Status, http.StatusNotFound)
	}
	if err.Message == "" {
		t.Error("Message is empty")
	}
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	err := NewError(99999)

	if err.Code != ErrUnknown {
		t.Errorf("Code = %d, want fallback %d", err.Code, ErrUnknown)
	}
	if err.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", err.Status, http.StatusInternalServerError)
	}
}

func TestNewError_DetailsIgnoredWithoutPlaceholder(t *testing.T) {
	base := NewError(ErrInvalidParams)
	detailed := NewError(ErrInvalidParams, "room_id is required")

	// The message template has no formatting placeholder, so details must not
	// leak into the client-facing message.
	if detailed.Message != base.Message {
		t.Errorf("Message = %q, want unchanged %q", detailed.Message, base.Message)
	}
	if detailed.Code != base.Code || detailed.Status != base.Status {
		t.Error("details changed code or status")
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"room name conflict", ErrRoomNameTaken, http.StatusConflict},
		{"room password", ErrRoomPasswordInvalid, http.StatusUnauthorized},
		{"session missing", ErrSessionNotFound, http.StatusNotFound},
		{"rate limited", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"persistence failure", ErrPersistenceFailed, http.StatusInternalServerError},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"validation default", ErrUsernameTaken, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewError(tt.code).Status; got != tt.want {
				t.Errorf("NewError(%d).Status = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
