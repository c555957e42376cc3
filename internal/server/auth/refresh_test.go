package auth

import (
	"testing"
	"time"
)

func TestNewRefreshToken(t *testing.T) {
	t.Parallel()

	validity := 24 * time.Hour
	tok, err := NewRefreshToken(validity)
	if err != nil {
		t.Fatalf("NewRefreshToken error: %v", err)
	}

	if len(tok.Token) != refreshTokenBytes*2 {
		t.Fatalf("token length: got %d want %d", len(tok.Token), refreshTokenBytes*2)
	}
	if got := tok.Expires.Sub(tok.CreatedAt); got != validity {
		t.Fatalf("validity window: got %v want %v", got, validity)
	}
	if tok.Expired(time.Now()) {
		t.Fatalf("fresh token must not be expired")
	}
	if !tok.Expired(tok.Expires) {
		t.Fatalf("token must be expired at its expiry instant")
	}

	other, err := NewRefreshToken(validity)
	if err != nil {
		t.Fatalf("NewRefreshToken error: %v", err)
	}
	if other.Token == tok.Token {
		t.Fatalf("two tokens must not share a value")
	}
}
