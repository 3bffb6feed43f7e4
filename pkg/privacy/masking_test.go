package privacy

import "testing"

func TestMaskPhoneNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"+", "+"},
		{"+1234", "+****"},
		{"+919876543210", "+********3210"},
		{"123", "***"},
		{"9876543210", "******3210"},
		{"+91 98765-43210", "+** *****-*3210"},
	}

	for _, tc := range cases {
		if got := MaskPhoneNumber(tc.in); got != tc.want {
			t.Errorf("MaskPhoneNumber(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMaskPhoneNumber_NeverLeaksMoreThanFourDigits(t *testing.T) {
	got := MaskPhoneNumber("919876543210")

	visible := 0
	for _, r := range got {
		if r >= '0' && r <= '9' {
			visible++
		}
	}

	if visible != visibleDigits {
		t.Fatalf("expected %d visible digits, got %d in %q", visibleDigits, visible, got)
	}
}
