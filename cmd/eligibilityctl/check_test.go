package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const finishedSnapshot = `{
  "course": {
    "id": "c1",
    "format": "topics",
    "completion_enabled": true,
    "start_date": "2026-01-01T00:00:00Z",
    "end_date": "2026-06-01T00:00:00Z",
    "student_count": 2
  },
  "samples": [
    {"id": "ue-1", "user_id": "u1", "time_start": "2026-01-05T00:00:00Z", "time_end": "2026-05-30T00:00:00Z"},
    {"id": "ue-2", "user_id": "u2", "time_start": "2026-07-01T00:00:00Z"}
  ]
}`

const openEndedSnapshot = `{
  "course": {
    "id": "c2",
    "format": "weeks",
    "completion_enabled": true,
    "start_date": "2026-01-01T00:00:00Z",
    "student_count": 5
  }
}`

func runCtl(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckPrintsSampleTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "course.json")
	require.NoError(t, os.WriteFile(path, []byte(finishedSnapshot), 0o600))

	out, err := runCtl(t, "", "check", "--file", path, "--now", "2026-10-14T00:00:00Z")

	require.NoError(t, err)
	assert.Contains(t, out, "course c1 [training]: analysable")
	assert.Contains(t, out, "ue-1")
	assert.Contains(t, out, "1 of 2 samples valid (50%)")
}

func TestCheckLocalizesRejection(t *testing.T) {
	out, err := runCtl(t, openEndedSnapshot, "check", "--mode", "prediction", "--now", "2026-10-14T00:00:00Z", "--lang", "id")

	require.NoError(t, err)
	assert.Equal(t, "course c2 [prediction]: not analysable: Kursus tidak memiliki tanggal selesai (no_end_time)\n", out)
}

func TestCheckJSONOutput(t *testing.T) {
	out, err := runCtl(t, finishedSnapshot, "check", "--output", "json", "--now", "2026-06-03T00:00:00Z")

	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, false, report["analysable"])
	assert.Equal(t, "already_finished", report["reason"])
	assert.Equal(t, "The course has just finished and its completion data is not settled yet", report["message"])
}

func TestCheckSettleMarginFlag(t *testing.T) {
	out, err := runCtl(t, finishedSnapshot, "check", "--now", "2026-06-03T00:00:00Z", "--settle-margin", "24h")

	require.NoError(t, err)
	assert.Contains(t, out, "analysable\n")
}

func TestCheckRejectsBadInput(t *testing.T) {
	_, err := runCtl(t, finishedSnapshot, "check", "--now", "yesterday")
	assert.ErrorContains(t, err, "invalid --now")

	_, err = runCtl(t, "{", "check")
	assert.ErrorContains(t, err, "decode snapshot")

	_, err = runCtl(t, finishedSnapshot, "check", "--output", "yaml")
	assert.ErrorContains(t, err, "unknown output format")

	_, err = runCtl(t, finishedSnapshot, "check", "--mode", "scoring")
	assert.Error(t, err)

	_, err = runCtl(t, "", "check", "--file", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "open snapshot")
}
