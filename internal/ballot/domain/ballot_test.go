package domain

import "testing"

func TestTokenPrefix(t *testing.T) {
	if got := TokenPrefix("0123456789abcdef"); got != "01234567..." {
		t.Errorf("TokenPrefix = %q", got)
	}
	if got := TokenPrefix("abc"); got != "abc..." {
		t.Errorf("TokenPrefix short = %q", got)
	}
}
