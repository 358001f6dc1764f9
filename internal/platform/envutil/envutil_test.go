package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 60 * time.Second},
		{"90s", 90 * time.Second},
		{"2h", 2 * time.Hour},
		{"45", 45 * time.Second},
		{"garbage", 60 * time.Second},
		{"-5s", 60 * time.Second},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_DURATION", tc.raw)
		if got := Duration("ENVUTIL_TEST_DURATION", 60*time.Second); got != tc.want {
			t.Fatalf("Duration(%q)=%s want %s", tc.raw, got, tc.want)
		}
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("expected false for off")
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "maybe")
	if !Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("expected default for unknown value")
	}

	t.Setenv("ENVUTIL_TEST_LIST", " http://a , ,http://b")
	got := List("ENVUTIL_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("List=%v", got)
	}
}
