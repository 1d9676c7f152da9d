package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		assert.NotEqual(t, "Tool description not available", GetToolDescription(name), name)
	}
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames(t *testing.T) {
	assert.Equal(t, []string{
		"extract_incident_tickets",
		"incident_template_info",
		"pdf_search_directory",
		"pdf_stats_file",
		"pdf_validate_file",
	}, GetAllToolNames())
}
