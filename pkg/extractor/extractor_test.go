package extractor_test

import (
	"testing"

	"github.com/ne3naika-ctrl/codex/internal/models"
	"github.com/ne3naika-ctrl/codex/pkg/extractor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFile_Markdown(t *testing.T) {
	text, sourceType, err := extractor.FromFile("notes.md", []byte("# Title\n\nBody text."))
	require.NoError(t, err)

	assert.Equal(t, models.SourceTypeMarkdown, sourceType)
	assert.Equal(t, "# Title\n\nBody text.", text)
}

func TestFromFile_MarkdownInvalidUTF8(t *testing.T) {
	raw := []byte("valid \xff\xfe text")

	text, sourceType, err := extractor.FromFile("broken.md", raw)
	require.NoError(t, err)

	assert.Equal(t, models.SourceTypeMarkdown, sourceType)
	assert.Equal(t, "valid  text", text)
}

func TestFromFile_Text(t *testing.T) {
	text, sourceType, err := extractor.FromFile("plain.TXT", []byte("just text"))
	require.NoError(t, err)

	assert.Equal(t, models.SourceTypeText, sourceType)
	assert.Equal(t, "just text", text)
}

func TestFromFile_HTML(t *testing.T) {
	raw := []byte(`<html><head><style>p{color:red}</style></head>` +
		`<body><script>var x=1;</script><p>Visible paragraph.</p></body></html>`)

	text, sourceType, err := extractor.FromFile("page.html", raw)
	require.NoError(t, err)

	assert.Equal(t, models.SourceTypeText, sourceType)
	assert.Contains(t, text, "Visible paragraph.")
	assert.NotContains(t, text, "var x=1;")
	assert.NotContains(t, text, "color:red")
}

func TestFromFile_PDFGarbage(t *testing.T) {
	_, sourceType, err := extractor.FromFile("broken.pdf", []byte("not a pdf at all"))

	assert.Error(t, err)
	assert.Equal(t, models.SourceTypePDF, sourceType)
}

func TestFromFile_UnsupportedExtension(t *testing.T) {
	_, _, err := extractor.FromFile("archive.zip", []byte{0x50, 0x4b})

	assert.ErrorIs(t, err, extractor.ErrUnsupportedType)
}
