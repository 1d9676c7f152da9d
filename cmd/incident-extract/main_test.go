package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridelectric/incident-extractor/internal/incident"
	"github.com/gridelectric/incident-extractor/internal/pdf/pdftest"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	t.Cleanup(func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	})

	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"

	var buf bytes.Buffer
	printVersion(&buf)

	output := buf.String()
	expectedStrings := []string{
		"Incident Extract",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	}
	for _, expected := range expectedStrings {
		assert.Contains(t, output, expected)
	}
}

func ticket(number string) string {
	return pdftest.NewPage().
		Text(10, 960, "Incident Number").
		Text(10, 940, number).
		Text(150, 940, "LGTS").
		Text(260, 940, "3").
		Text(10, 920, "Address").Text(190, 920, "Calls").Text(290, 920, "Start Time").
		Text(10, 900, "12 Oak Ave").Text(190, 900, "2").
		Text(10, 860, "Duration").
		Text(10, 850, "5 h").
		String()
}

type summary struct {
	InputPDF        string    `json:"input_pdf"`
	OutputJSON      string    `json:"output_json"`
	IncidentCount   int       `json:"incident_count"`
	IncidentNumbers []*string `json:"incident_numbers"`
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Extract(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "batch1.pdf")
	require.NoError(t, os.WriteFile(input, pdftest.Document(ticket("2000000002"), ticket("2000000001")), 0o600))
	out := filepath.Join(dir, "output", "pdf", "tickets.json")

	code, stdout, stderr := runCLI(t, "--output", out, "--validate", input)
	require.Equal(t, 0, code, stderr)

	var s summary
	require.NoError(t, json.Unmarshal([]byte(stdout), &s))
	assert.Equal(t, input, s.InputPDF)
	assert.Equal(t, out, s.OutputJSON)
	assert.Equal(t, 2, s.IncidentCount)
	require.Len(t, s.IncidentNumbers, 2)
	assert.Equal(t, "2000000002", *s.IncidentNumbers[0])
	assert.Equal(t, "2000000001", *s.IncidentNumbers[1])

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var records []incident.Record
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "12 Oak Ave", *records[0].Address)
	assert.Equal(t, "2", *records[0].Calls)
	assert.Nil(t, records[0].StartTime)
	assert.Equal(t, "5 h", *records[0].Duration)
	assert.Equal(t, 2, records[1].PageNumber)

	assert.Contains(t, stderr, "extraction complete")
	assert.Contains(t, stderr, "cross-check passed")
}

func TestRun_ExtractNoTickets(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "other.pdf")
	require.NoError(t, os.WriteFile(input, pdftest.Document(pdftest.NewBlankPage().Text(1, 1, "x").String()), 0o600))
	out := filepath.Join(dir, "empty.json")

	code, stdout, _ := runCLI(t, "-o", out, input)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, `"incident_count": 0`)
	assert.Contains(t, stdout, `"incident_numbers": []`)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestRun_ExtractEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(input, nil, 0o600))
	out := filepath.Join(dir, "tickets.json")

	code, stdout, stderr := runCLI(t, "-o", out, "--validate", input)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"incident_count": 0`)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
	assert.Contains(t, stderr, "file is empty")
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "batch.pdf")
	require.NoError(t, os.WriteFile(input, pdftest.Document(ticket("2000000001")), 0o600))
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"no input", nil, "input PDF path is required"},
		{"bad flag", []string{"--nope", input}, "unknown flag"},
		{"missing input", []string{"-o", filepath.Join(dir, "x.json"), filepath.Join(dir, "missing.pdf")}, "extraction failed"},
		{"unwritable output", []string{"-o", filepath.Join(blocker, "x.json"), input}, "WRITE_FAILURE"},
		{"missing template", []string{"--template", filepath.Join(dir, "none.yaml"), input}, "failed to load template"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestRun_VersionAndHelp(t *testing.T) {
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Incident Extract")

	code, stdout, stderr := runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Usage of incident-extract")
}
