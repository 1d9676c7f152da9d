package mcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/gridelectric/incident-extractor/internal/config"
	"github.com/gridelectric/incident-extractor/internal/descriptions"
	"github.com/gridelectric/incident-extractor/internal/output"
	"github.com/gridelectric/incident-extractor/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool list is fixed
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger,
	}

	s.mcpServer.AddTools(s.tools()...)

	return s, nil
}

// tools declares every tool and its handler
func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(
				descriptions.ExtractIncidentTickets,
				mcp.WithDescription(descriptions.GetToolDescription(descriptions.ExtractIncidentTickets)),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("Path to the Incident Summary Report PDF"),
				),
				mcp.WithString("output",
					mcp.Description("Optional JSON file to write the records to instead of returning them"),
				),
				mcp.WithBoolean("validate",
					mcp.Description("Cross-check the ticket count against the document page count"),
				),
			),
			Handler: s.handleExtractIncidentTickets,
		},
		{
			Tool: mcp.NewTool(
				descriptions.PDFValidateFile,
				mcp.WithDescription(descriptions.GetToolDescription(descriptions.PDFValidateFile)),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("Path to the PDF file to validate"),
				),
			),
			Handler: s.handlePDFValidateFile,
		},
		{
			Tool: mcp.NewTool(
				descriptions.PDFStatsFile,
				mcp.WithDescription(descriptions.GetToolDescription(descriptions.PDFStatsFile)),
				mcp.WithString("path",
					mcp.Required(),
					mcp.Description("Path to the PDF file"),
				),
			),
			Handler: s.handlePDFStatsFile,
		},
		{
			Tool: mcp.NewTool(
				descriptions.PDFSearchDirectory,
				mcp.WithDescription(descriptions.GetToolDescription(descriptions.PDFSearchDirectory)),
				mcp.WithString("directory",
					mcp.Description("Directory to search, the configured directory when empty"),
				),
				mcp.WithString("query",
					mcp.Description("Words that must all appear in the file name"),
				),
			),
			Handler: s.handlePDFSearchDirectory,
		},
		{
			Tool: mcp.NewTool(
				descriptions.IncidentTemplateInfo,
				mcp.WithDescription(descriptions.GetToolDescription(descriptions.IncidentTemplateInfo)),
			),
			Handler: s.handleIncidentTemplateInfo,
		},
	}
}

// Handler functions
func (s *Server) handleExtractIncidentTickets(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.ExtractRequest{Path: path}
	args := request.GetArguments()
	if out, ok := args["output"].(string); ok {
		req.Output = out
	}
	if validate, ok := args["validate"].(bool); ok {
		req.CrossCheck = validate
	}

	result, err := s.pdfService.ExtractIncidentTickets(req)
	if err != nil {
		s.logger.Warn("extraction failed", "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}

	s.logger.Info("extracted incident tickets",
		"path", result.InputPDF,
		"tickets", result.IncidentCount,
		"output", result.OutputJSON)
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d page(s))", result.Path, result.Pages)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFStatsFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFStatsFile(pdf.PDFStatsFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPDFStatsFileResult(result)), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()
	directory, _ := args["directory"].(string)
	query, _ := args["query"].(string)

	result, err := s.pdfService.PDFSearchDirectory(ctx, pdf.PDFSearchDirectoryRequest{
		Directory: directory,
		Query:     query,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPDFSearchDirectoryResult(result)), nil
}

func (s *Server) handleIncidentTemplateInfo(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	data, err := yaml.Marshal(s.pdfService.Template())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode template: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Formatting methods
func formatPDFStatsFileResult(result *pdf.PDFStatsFileResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PDF Statistics for: %s\n", result.Path)
	fmt.Fprintf(&b, "Size: %d bytes\n", result.Size)
	fmt.Fprintf(&b, "Pages: %d\n", result.Pages)
	fmt.Fprintf(&b, "PDF Version: %s\n", result.Version)
	fmt.Fprintf(&b, "Encrypted: %t\n", result.Encrypted)
	fmt.Fprintf(&b, "Modified: %s\n", result.ModifiedDate)

	optional := []struct{ label, value string }{
		{"Title", result.Title},
		{"Author", result.Author},
		{"Subject", result.Subject},
		{"Producer", result.Producer},
		{"Created", result.CreatedDate},
	}
	for _, field := range optional {
		if field.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", field.label, field.value)
		}
	}
	return b.String()
}

func formatPDFSearchDirectoryResult(result *pdf.PDFSearchDirectoryResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d PDF file(s) in %s", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		fmt.Fprintf(&b, " matching %q", result.SearchQuery)
	}
	b.WriteString("\n")
	if result.Truncated {
		b.WriteString("Results truncated, narrow the search with a query or a subdirectory\n")
	}

	for i, file := range result.Files {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, file.Name)
		fmt.Fprintf(&b, "   Path: %s\n", file.Path)
		fmt.Fprintf(&b, "   Size: %d bytes\n", file.Size)
		fmt.Fprintf(&b, "   Modified: %s\n", file.ModifiedTime)
	}
	return b.String()
}

// Run serves MCP over the process's standard input and output until the
// client disconnects or ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve speaks the MCP stdio transport over in and out
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Debug("starting MCP server in stdio mode",
		"directory", s.pdfService.Directory(),
		"template", s.pdfService.Template().Name)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	if err := stdio.Listen(ctx, in, out); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
