package version

import (
	"runtime/debug"
	"testing"
)

func TestFromSettings(t *testing.T) {
	info := fromSettings(Info{Version: "1.2.0"}, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.modified", Value: "true"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	})
	if info.Commit != "0123456" {
		t.Errorf("expected truncated commit, got %q", info.Commit)
	}
	if !info.Dirty || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected info %+v", info)
	}
	if got := info.Short(); got != "1.2.0-0123456-dirty" {
		t.Errorf("unexpected short version %q", got)
	}
}

func TestFromSettings_LinkTimeValuesWin(t *testing.T) {
	info := fromSettings(Info{Version: "1.2.0", Commit: "abc", BuildTime: "now"}, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	})
	if info.Commit != "abc" || info.BuildTime != "now" {
		t.Errorf("link-time values should win, got %+v", info)
	}
}

func TestString(t *testing.T) {
	info := Info{Version: "dev", GoVersion: "go1.26.0"}
	if got := info.String(); got != "dev go1.26.0" {
		t.Errorf("unexpected string %q", got)
	}
	if got := Get().Version; got != Version {
		t.Errorf("expected %q, got %q", Version, got)
	}
}
