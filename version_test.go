package dealfinder

import (
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	info := GetVersion()
	if info.Version == "" || info.GoVersion == "" || info.Platform == "" {
		t.Fatalf("incomplete version info: %+v", info)
	}
	if !strings.HasPrefix(info.String(), "dealfinder ") {
		t.Errorf("String() = %q", info.String())
	}
}
