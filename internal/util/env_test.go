package util

import "testing"

func TestParseBoolValue(t *testing.T) {
	cases := []struct {
		val        string
		defaultVal bool
		want       bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"off", true, false},
		{"", true, true},
		{"", false, false},
		{"banana", true, true},
		{"banana", false, false},
		{" true ", false, true},
	}
	for _, c := range cases {
		if got := ParseBoolValue(c.val, c.defaultVal); got != c.want {
			t.Errorf("ParseBoolValue(%q, %v) = %v, want %v", c.val, c.defaultVal, got, c.want)
		}
	}
}
