package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusespa/promptgauge/internal/types"
)

func writeSuiteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const securityDoc = `test_cases:
  - id: sec-001
    name: Hardcoded secret
    platform: web
    language: typescript
    code: const key = "sk-live-123";
    expected:
      detected: true
      severity: critical
      principle: security
  - id: sec-002
    name: Clean query
    code: db.where({ name })
    expected:
      detected: false
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "security_test_cases.yaml", securityDoc)
	writeSuiteFile(t, dir, "testing_test_cases.yaml", `test_cases:
  - id: test-001
    name: No assertions
    platform: android
    code: runTest()
    expected:
      detected: true
`)

	s, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, s.Cases, 3)
	assert.Equal(t, []string{"security", "testing"}, s.Categories)
	assert.Empty(t, s.SkippedFiles)

	// Category comes from the document filename.
	assert.Equal(t, "security", s.Cases[0].Category)
	assert.Equal(t, "testing", s.Cases[2].Category)

	// Missing platform defaults to all.
	assert.Equal(t, types.PlatformAll, s.Cases[1].Platform)
	assert.Equal(t, types.PlatformWeb, s.Cases[0].Platform)
	assert.True(t, s.Cases[0].Expected.Detected)
	assert.Equal(t, "critical", s.Cases[0].Expected.Severity)
}

func TestLoadSkipsMalformedFileButKeepsSiblings(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "broken_test_cases.yaml", "test_cases: [unterminated")
	writeSuiteFile(t, dir, "security_test_cases.yaml", securityDoc)

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Len(t, s.Cases, 2)
	require.Len(t, s.SkippedFiles, 1)
	assert.Contains(t, s.SkippedFiles[0], "broken_test_cases.yaml")
	assert.Equal(t, []string{"security"}, s.Categories)
}

func TestLoadSkipsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "a_test_cases.yaml", `test_cases:
  - id: dup-001
    name: first
    code: x()
    expected: {detected: true}
`)
	writeSuiteFile(t, dir, "b_test_cases.yaml", `test_cases:
  - id: dup-001
    name: second
    code: y()
    expected: {detected: false}
`)

	s, err := Load(dir)
	require.NoError(t, err)

	// Files load in sorted order, so the first occurrence wins.
	require.Len(t, s.Cases, 1)
	assert.Equal(t, "first", s.Cases[0].Name)
	assert.Equal(t, "a", s.Cases[0].Category)
}

func TestLoadSkipsIncompleteCases(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "partial_test_cases.yaml", `test_cases:
  - id: ok-001
    name: usable
    code: x()
    expected: {detected: true}
  - name: no id
    code: y()
    expected: {detected: true}
  - id: no-code
    name: missing snippet
    expected: {detected: true}
  - id: bad-platform
    name: unknown platform
    platform: desktop
    code: z()
    expected: {detected: true}
`)

	s, err := Load(dir)
	require.NoError(t, err)

	require.Len(t, s.Cases, 1)
	assert.Equal(t, "ok-001", s.Cases[0].ID)
}

func TestLoadEmptyDir(t *testing.T) {
	_, err := Load(t.TempDir())

	assert.Error(t, err)
}

func TestLoadNoUsableCases(t *testing.T) {
	dir := t.TempDir()
	writeSuiteFile(t, dir, "empty_test_cases.yaml", "test_cases: []\n")

	_, err := Load(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable test cases")
}
