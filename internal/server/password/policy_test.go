package password

import (
	"errors"
	"testing"

	"github.com/mkokor/jwt-based-access-management/internal/common"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		plaintext string
		wantErr   bool
	}{
		{name: "valid", plaintext: "abcdef1!", wantErr: false},
		{name: "valid with all classes", plaintext: "Str0ng&Pass", wantErr: false},
		{name: "too short", plaintext: "short1!", wantErr: true},
		{name: "no digit", plaintext: "longenough!", wantErr: true},
		{name: "no special", plaintext: "longenough1", wantErr: true},
		{name: "letters only", plaintext: "longenough", wantErr: true},
		{name: "disallowed punctuation", plaintext: "abcdef1!?", wantErr: true},
		{name: "whitespace", plaintext: "abc def1!", wantErr: true},
		{name: "unicode", plaintext: "pässword1!", wantErr: true},
		{name: "empty", plaintext: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.plaintext)
			if tt.wantErr {
				if !errors.Is(err, common.ErrPasswordTooWeak) {
					t.Fatalf("want ErrPasswordTooWeak, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
