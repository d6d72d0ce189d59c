package testutil

import (
	"strings"
	"testing"
)

func TestContainerSafe(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"TestServer", "TestServer"},
		{"TestServer/defra_backend", "TestServer-defra-backend"},
		{"Test(weird) name!", "Testweirdname"},
		{strings.Repeat("x", 50), strings.Repeat("x", maxNameLen)},
	}
	for _, tt := range tests {
		if got := containerSafe(tt.in); got != tt.want {
			t.Errorf("containerSafe(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueContainerName(t *testing.T) {
	a, b := UniqueContainerName(t), UniqueContainerName(t)
	if a == b {
		t.Errorf("names collide: %s", a)
	}
	if !strings.HasPrefix(a, ContainerPrefix+"TestUniqueContainerName-") {
		t.Errorf("name = %s", a)
	}
}
