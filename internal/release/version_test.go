package release

import "testing"

func TestEnsurePrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0.42.0", "v0.42.0"},
		{"v0.42.0", "v0.42.0"},
		{"V0.42.0", "V0.42.0"},
		{"1", "v1"},
		{"not-a-version", "vnot-a-version"},
		{"", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := EnsurePrefix(tt.input); got != tt.want {
				t.Errorf("EnsurePrefix(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnsurePrefix_ExactlyOnce(t *testing.T) {
	for _, v := range []string{"0.1.0", "1.2.3-rc.1", "2024.1.1", "x"} {
		got := EnsurePrefix(v)
		if got != "v"+v {
			t.Errorf("EnsurePrefix(%q) = %q", v, got)
		}
		if again := EnsurePrefix(got); again != got {
			t.Errorf("EnsurePrefix is not idempotent: %q -> %q", got, again)
		}
	}
}

func TestIsLatest(t *testing.T) {
	for _, v := range []string{"latest", "LATEST", "Latest", " latest "} {
		if !IsLatest(v) {
			t.Errorf("IsLatest(%q) = false", v)
		}
	}
	for _, v := range []string{"", "v0.42.0", "latest-1"} {
		if IsLatest(v) {
			t.Errorf("IsLatest(%q) = true", v)
		}
	}
}

func TestCleanVersion(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v0.42.0", "0.42.0"},
		{"0.42.0", "0.42.0"},
		{" =v1.2.3 ", "1.2.3"},
		{"V1.2.3", "1.2.3"},
		{"v1.2.3+build.5", "1.2.3"},
		{"v1.2.3-rc.1", "1.2.3-rc.1"},
		{"v1.2", "v1.2"},
		{"nightly", "nightly"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := CleanVersion(tt.input); got != tt.want {
				t.Errorf("CleanVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsSemver(t *testing.T) {
	if !IsSemver("v0.42.0") {
		t.Error("v0.42.0 should be semver")
	}
	if IsSemver("latest") {
		t.Error("latest should not be semver")
	}
}
