package models

import "testing"

func TestChatRoomSymmetry(t *testing.T) {
	cases := []struct {
		a, b string
	}{
		{"abc", "xyz"},
		{"xyz", "abc"},
		{"507f1f77bcf86cd799439011", "507f191e810c19729de860ea"},
		{"same", "same"},
	}

	for _, tc := range cases {
		if got, want := ChatRoom(tc.a, tc.b), ChatRoom(tc.b, tc.a); got != want {
			t.Errorf("ChatRoom(%q,%q)=%q but ChatRoom(%q,%q)=%q", tc.a, tc.b, got, tc.b, tc.a, want)
		}
	}

	if got := ChatRoom("b", "a"); got != "a_b" {
		t.Errorf("ChatRoom(b,a) = %q, want a_b", got)
	}
}
