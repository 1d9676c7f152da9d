package descriptions

import (
	"maps"
	"slices"
)

// Tool names exposed by the MCP server
const (
	ExtractIncidentTickets = "extract_incident_tickets"
	PDFValidateFile        = "pdf_validate_file"
	PDFStatsFile           = "pdf_stats_file"
	PDFSearchDirectory     = "pdf_search_directory"
	IncidentTemplateInfo   = "incident_template_info"
)

const (
	ExtractIncidentTicketsDescription = `Extract incident tickets from an Incident Summary Report PDF.

**When to use:** A utility outage report lists one incident ticket per page and you need the ticket fields as data.

**What you get:** One record per ticket page, ordered as the pages are stored in the file. Each record carries incident number and type, address, calls, start time, ERT, duration, device and network details, the damage assessment counts, the scout flag, the first customer comment and the raw text lines of the page. Fields that are not printed on a page are null.

**Examples:**
• Inline records: "Extract the tickets from storm/batch1.pdf"
• Write a file: "Extract tickets from batch1.pdf into json/batch1.json"
• Sanity check: "Extract batch2.pdf with validate=true and tell me if every page became a ticket"

**Best practices:** Paths are relative to the configured directory. Use the output parameter for large reports so the response stays small.`

	PDFValidateFileDescription = `Verify that a file is a readable PDF and report its page count.

**When to use:** Before extracting from a file of unknown origin, or when an extraction returned no tickets.

**Examples:**
• "Check that uploads/batch3.pdf is a valid PDF"

**Best practices:** A file can be a valid PDF and still hold no incident tickets; validation only checks the container.`

	PDFStatsFileDescription = `Get document statistics for a PDF: size, page count, PDF version, encryption and info dictionary fields.

**When to use:** Comparing a report against the number of tickets extracted, or checking why a file yields nothing (encrypted files cannot be read).

**Examples:**
• "How many pages does batch1.pdf have and which PDF version is it?"`

	PDFSearchDirectoryDescription = `Find PDF files in the configured directory or one of its subdirectories.

**When to use:** Locating the report batches before extracting them.

**Examples:**
• "List the PDFs in the storm folder"
• "Find reports whose name mentions batch 3"

**Best practices:** Every query word must appear in the file name. Hidden files, symlinks and files over the size limit are not listed.`

	IncidentTemplateInfoDescription = `Describe the report layout the extractor applies.

**When to use:** Understanding why a field came back null, or checking which captions, anchors and coordinate bands a report must match.

**Examples:**
• "Which x range does the extractor read the device name from?"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	ExtractIncidentTickets: ExtractIncidentTicketsDescription,
	PDFValidateFile:        PDFValidateFileDescription,
	PDFStatsFile:           PDFStatsFileDescription,
	PDFSearchDirectory:     PDFSearchDirectoryDescription,
	IncidentTemplateInfo:   IncidentTemplateInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	return slices.Sorted(maps.Keys(ToolDescriptions))
}
