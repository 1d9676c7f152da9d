package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridelectric/incident-extractor/internal/config"
	"github.com/gridelectric/incident-extractor/internal/pdf"
	"github.com/gridelectric/incident-extractor/internal/pdf/pdftest"
)

func ticket(number string) string {
	return pdftest.NewPage().
		Text(10, 960, "Incident Number").
		Text(10, 940, number).
		Text(150, 940, "LGTS").
		Text(260, 940, "7").
		String()
}

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	tempDir := t.TempDir()

	cfg := &config.Config{
		Mode:         config.ModeStdio,
		PDFDirectory: tempDir,
		Version:      "1.0.0",
		ServerName:   "test-server",
		LogLevel:     "info",
		MaxFileSize:  1024 * 1024,
	}
	pdfService, err := pdf.NewSandboxedService(cfg.MaxFileSize, cfg.PDFDirectory, nil, nil)
	require.NoError(t, err)

	server, err := NewServer(cfg, pdfService, nil)
	require.NoError(t, err)
	return server, tempDir
}

func writeReport(t *testing.T, dir string, numbers ...string) string {
	t.Helper()
	pages := make([]string, len(numbers))
	for i, number := range numbers {
		pages[i] = ticket(number)
	}
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, pdftest.Document(pages...), 0o600))
	return path
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	pdfService := pdf.NewService(cfg.MaxFileSize, nil, nil)

	server, err := NewServer(cfg, pdfService, nil)
	require.NoError(t, err)
	assert.Same(t, cfg, server.config)
	assert.Same(t, pdfService, server.pdfService)
	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.logger)

	_, err = NewServer(cfg, nil, nil)
	assert.Error(t, err)

	_, err = NewServer(nil, pdfService, nil)
	assert.Error(t, err)
}

func TestServer_Tools(t *testing.T) {
	server, _ := newTestServer(t)

	var names []string
	for _, tool := range server.tools() {
		names = append(names, tool.Tool.Name)
		assert.NotEmpty(t, tool.Tool.Description, tool.Tool.Name)
		assert.NotNil(t, tool.Handler, tool.Tool.Name)
	}
	assert.Equal(t, []string{
		"extract_incident_tickets",
		"pdf_validate_file",
		"pdf_stats_file",
		"pdf_search_directory",
		"incident_template_info",
	}, names)

	extract := server.tools()[0].Tool
	assert.Equal(t, []string{"path"}, extract.InputSchema.Required)
	assert.Contains(t, extract.InputSchema.Properties, "output")
	assert.Contains(t, extract.InputSchema.Properties, "validate")
}

func TestServer_HandleExtractInline(t *testing.T) {
	server, dir := newTestServer(t)
	writeReport(t, dir, "1000000001", "1000000002")

	result, err := server.handleExtractIncidentTickets(context.Background(),
		callRequest(map[string]interface{}{"path": "report.pdf", "validate": true}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	var decoded pdf.ExtractResult
	require.NoError(t, json.Unmarshal([]byte(extractTextFromResult(result)), &decoded))
	assert.Equal(t, 2, decoded.IncidentCount)
	require.Len(t, decoded.Records, 2)
	assert.Equal(t, "1000000001", *decoded.Records[0].IncidentNumber)
	assert.Equal(t, "7", *decoded.Records[1].AffectedCustomers)
	require.NotNil(t, decoded.CrossCheck)
	assert.Equal(t, 2, decoded.CrossCheck.Pages)
}

func TestServer_HandleExtractToFile(t *testing.T) {
	server, dir := newTestServer(t)
	writeReport(t, dir, "1000000001")

	result, err := server.handleExtractIncidentTickets(context.Background(),
		callRequest(map[string]interface{}{"path": "report.pdf", "output": "json/batch.json"}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, `"output_json": "`+filepath.Join(dir, "json", "batch.json")+`"`)
	assert.NotContains(t, text, `"records"`)
	assert.FileExists(t, filepath.Join(dir, "json", "batch.json"))
}

func TestServer_HandleExtractOutsideDirectory(t *testing.T) {
	server, _ := newTestServer(t)
	outside := writeReport(t, t.TempDir(), "1000000001")

	result, err := server.handleExtractIncidentTickets(context.Background(),
		callRequest(map[string]interface{}{"path": outside}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "outside configured directory")
}

func TestServer_HandlePDFValidateFile(t *testing.T) {
	server, dir := newTestServer(t)
	writeReport(t, dir, "1000000001")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "junk.pdf"), make([]byte, 64), 0o600))

	result, err := server.handlePDFValidateFile(context.Background(),
		callRequest(map[string]interface{}{"path": "report.pdf"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "is valid and readable (1 page(s))")

	result, err = server.handlePDFValidateFile(context.Background(),
		callRequest(map[string]interface{}{"path": "junk.pdf"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "PDF validation failed")
}

func TestServer_HandlePDFStatsFile(t *testing.T) {
	server, dir := newTestServer(t)
	writeReport(t, dir, "1000000001", "1000000002")

	result, err := server.handlePDFStatsFile(context.Background(),
		callRequest(map[string]interface{}{"path": "report.pdf"}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractTextFromResult(result))

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Pages: 2")
	assert.Contains(t, text, "PDF Version: 1.4")
	assert.Contains(t, text, "Encrypted: false")
}

func TestServer_HandlePDFSearchDirectory(t *testing.T) {
	server, dir := newTestServer(t)
	writeReport(t, dir, "1000000001")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "storm"), 0o750))
	writeReport(t, filepath.Join(dir, "storm"), "1000000002")

	result, err := server.handlePDFSearchDirectory(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := extractTextFromResult(result)
	assert.Contains(t, text, "Found 2 PDF file(s)")
	assert.Contains(t, text, filepath.Join(dir, "storm", "report.pdf"))

	result, err = server.handlePDFSearchDirectory(context.Background(), callRequest(map[string]interface{}{
		"directory": "storm",
		"query":     "report",
	}))
	require.NoError(t, err)
	text = extractTextFromResult(result)
	assert.Contains(t, text, `Found 1 PDF file(s) in `+filepath.Join(dir, "storm")+` matching "report"`)

	result, err = server.handlePDFSearchDirectory(context.Background(), callRequest(map[string]interface{}{
		"directory": "..",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "outside configured directory")
}

func TestServer_HandleIncidentTemplateInfo(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleIncidentTemplateInfo(context.Background(), callRequest(nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "name: incident-summary")
	assert.Contains(t, text, "device_name")
}

func TestServer_InvalidArguments(t *testing.T) {
	server, _ := newTestServer(t)

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"extract":  server.handleExtractIncidentTickets,
		"validate": server.handlePDFValidateFile,
		"stats":    server.handlePDFStatsFile,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(context.Background(), callRequest(map[string]interface{}{}))
			require.NoError(t, err)
			assert.True(t, result.IsError)

			result, err = handler(context.Background(), callRequest(map[string]interface{}{"path": 42}))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestFormatPDFStatsFileResult(t *testing.T) {
	text := formatPDFStatsFileResult(&pdf.PDFStatsFileResult{
		Path:     "/reports/batch.pdf",
		Size:     2048,
		Pages:    12,
		Version:  "1.7",
		Title:    "Incident Summary",
		Producer: "Report Writer",
	})

	assert.True(t, strings.HasPrefix(text, "PDF Statistics for: /reports/batch.pdf\n"))
	assert.Contains(t, text, "Pages: 12\n")
	assert.Contains(t, text, "Title: Incident Summary\n")
	assert.Contains(t, text, "Producer: Report Writer\n")
	assert.NotContains(t, text, "Author:")
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
