package version

import "testing"

func TestIsDevelopmentVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", true},
		{"unknown", true},
		{"dev", true},
		{"devel", true},
		{"devel+abc123", true},
		{"devel+abc+dirty", true},

		{"v0.1.0", false},
		{"1.0.0-beta", false},
		{"v2.5.3", false},

		// Partial matches are not development builds
		{"develop", false},
		{"my-devel", false},
		{"DEV", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := IsDevelopmentVersion(tt.input)
			if got != tt.expected {
				t.Errorf("IsDevelopmentVersion(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBase(t *testing.T) {
	tests := []struct {
		build string
		want  string
	}{
		{"v2.1.0", "v2.1"},
		{"2.1.7", "v2.1"},
		{"v3.0", "v3.0"},
		{"v1.4.2-rc.1", "v1.4"},
		{"dev", "dev"},
		{"devel+abc+dirty", "dev"},
		{"garbage", "dev"},
	}
	for _, tt := range tests {
		if got := Base(tt.build); got != tt.want {
			t.Errorf("Base(%q) = %q, want %q", tt.build, got, tt.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	tests := []struct {
		build string
		patch int
		want  string
	}{
		{"v2.1.0", 90, "v2.1.090"},
		{"v2.1.0", 0, "v2.1.000"},
		{"v2.1.0", 1234, "v2.1.1234"},
		{"dev", 7, "dev.007"},
		{"v1.0.0", -3, "v1.0.000"},
	}
	for _, tt := range tests {
		if got := Display(tt.build, tt.patch); got != tt.want {
			t.Errorf("Display(%q, %d) = %q, want %q", tt.build, tt.patch, got, tt.want)
		}
	}
}
