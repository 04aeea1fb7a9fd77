package common

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCrashReport(t *testing.T) {
	report := string(BuildCrashReport("boom", "goroutine 1 [running]"))

	assert.Contains(t, report, "=== OFERTA CRASH REPORT ===")
	assert.Contains(t, report, "=== PANIC VALUE ===\nboom")
	assert.Contains(t, report, "goroutine 1 [running]")
	assert.Contains(t, report, "=== END CRASH REPORT ===")
}

func TestWriteCrashFile(t *testing.T) {
	previous := CrashLogDir
	defer func() { CrashLogDir = previous }()

	InstallCrashHandler(t.TempDir())

	path := WriteCrashFile("boom", GetStackTrace())
	require.NotEmpty(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "boom")
}
