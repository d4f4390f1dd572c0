package version

import "testing"

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		build    string
		expected string
	}{
		{build: "", expected: "1.2.3"},
		{build: "rc1", expected: "1.2.3-rc1"},
		{build: "feature-X9", expected: "1.2.3-feature-X9"},
		{build: "bad.build", expected: "1.2.3"},
		{build: "space here", expected: "1.2.3"},
	}
	for _, test := range tests {
		result := formatVersion(1, 2, 3, test.build)
		if result != test.expected {
			t.Errorf("formatVersion(%q): expected %s, got %s", test.build, test.expected, result)
		}
	}
}
