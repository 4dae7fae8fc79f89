package utils

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	j := NewJWTUtil("test-secret")

	token, err := j.GenerateToken("user-123", "installer")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, role, err := j.Claims(token)
	if err != nil {
		t.Fatalf("Claims: %v", err)
	}
	if userID != "user-123" || role != "installer" {
		t.Errorf("claims = %s/%s, want user-123/installer", userID, role)
	}
}

func TestForeignSecretRejected(t *testing.T) {
	token, err := NewJWTUtil("secret-a").GenerateToken("user-123", "client")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, _, err := NewJWTUtil("secret-b").Claims(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestGenerateCodeLength(t *testing.T) {
	if got := len(GenerateCode(10)); got != 10 {
		t.Errorf("code length = %d, want 10", got)
	}
}
