package docio

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexdraft/lexdraft/internal/common"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// Renderer writes finished markdown drafts as minimal DOCX artifacts under
// the exports directory. YAML front matter is dropped; headings and list
// markers are flattened to plain paragraphs.
type Renderer struct {
	exportsDir string
}

func NewRenderer(exportsDir string) *Renderer {
	return &Renderer{exportsDir: exportsDir}
}

func (r *Renderer) RenderArtifact(ctx context.Context, markdown, instanceID string) (string, error) {
	logger := common.Logger()
	if err := os.MkdirAll(r.exportsDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare exports dir: %w", err)
	}
	path := filepath.Join(r.exportsDir, instanceID+".docx")

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":         relsXML,
		"word/document.xml":   documentXML(markdown),
	}
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml"} {
		entry, err := writer.Create(name)
		if err != nil {
			writer.Close()
			return "", fmt.Errorf("create archive entry %s: %w", name, err)
		}
		if _, err := entry.Write([]byte(parts[name])); err != nil {
			writer.Close()
			return "", fmt.Errorf("write archive entry %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalise archive: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	logger.Info("docio: artifact rendered", "path", path)
	return path, nil
}

func documentXML(markdown string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, line := range markdownLines(markdown) {
		sb.WriteString("<w:p><w:r><w:t xml:space=\"preserve\">")
		xml.EscapeText(&sb, []byte(line))
		sb.WriteString("</w:t></w:r></w:p>")
	}
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

// markdownLines strips front matter and markdown decoration, yielding the
// paragraph text to place in the artifact.
func markdownLines(markdown string) []string {
	var out []string
	inFrontMatter := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "---" {
			inFrontMatter = !inFrontMatter
			continue
		}
		if inFrontMatter || trimmed == "" {
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "# ")
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			trimmed = trimmed[2:]
		}
		trimmed = strings.ReplaceAll(trimmed, "**", "")
		trimmed = strings.ReplaceAll(trimmed, "__", "")
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
