package logger

import (
	"strings"
	"testing"

	isLib "github.com/matryer/is"
)

func TestGetLogsFiltersByLevel(t *testing.T) {
	is := isLib.New(t)

	Info("refresh produced 2 invites")
	Warning("refresh aborted")
	Debug("rule walk detail")

	warnings := GetLogs(10, "WARNING")
	is.True(len(warnings) >= 1)
	is.True(strings.Contains(warnings[0], "refresh aborted")) // newest warning first
	for _, line := range warnings {
		is.True(!strings.Contains(line, "rule walk detail")) // debug lines are filtered out
	}

	all := GetLogs(2, "DEBUG")
	is.Equal(len(all), 2)
	is.True(strings.Contains(all[0], "rule walk detail"))
}

func TestGetLogsZeroCount(t *testing.T) {
	Info("anything")
	if got := GetLogs(0, "INFO"); len(got) != 0 {
		t.Fatalf("GetLogs(0) = %v, want empty", got)
	}
}
