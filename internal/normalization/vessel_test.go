package normalization

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  F/V Ndar  ", "F V NDAR"},
		{"ATLANTIC-STAR", "ATLANTIC STAR"},
		{"atlantic   star", "ATLANTIC STAR"},
		{"M.V. \"JOOLA\"", "M V JOOLA"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIMO(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"9123456", "9123456"},
		{"IMO 9123456", "9123456"},
		{"9123456.0", "9123456"},
		{" 912345 ", "912345"},
		{"n/a", ""},
	}
	for _, tc := range cases {
		if got := NormalizeIMO(tc.in); got != tc.want {
			t.Errorf("NormalizeIMO(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeFlagAndCallSign(t *testing.T) {
	if got := NormalizeFlag(" sen "); got != "SEN" {
		t.Errorf("NormalizeFlag = %q", got)
	}
	if got := NormalizeCallSign("6v ab"); got != "6VAB" {
		t.Errorf("NormalizeCallSign = %q", got)
	}
}
