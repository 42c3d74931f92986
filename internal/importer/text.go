package importer

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/lu4p/cat"
	"github.com/yuin/goldmark"
)

// extractText returns the text of a document. ext includes the leading dot.
// Markdown comes back as HTML; the importer strips the tags when it sanitizes.
func extractText(content []byte, ext string) (string, error) {
	switch ext {
	case ".md":
		var buf bytes.Buffer
		if err := goldmark.Convert(content, &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		return buf.String(), nil
	case ".pdf":
		return pdfText(content)
	case ".docx":
		return docxText(content)
	case ".odt", ".rtf":
		text, err := cat.FromBytes(content)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", ext, err)
		}
		return text, nil
	default:
		if !utf8.Valid(content) {
			return strings.ToValidUTF8(string(content), "�"), nil
		}
		return string(content), nil
	}
}

func pdfText(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}

const (
	docxBody         = "word/document.xml"
	docxContentTypes = "[Content_Types].xml"
	docxMainType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// <w:t> and <w:t xml:space="preserve"> runs, with any attributes.
	docxRun = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)
	// paragraph ends become line breaks
	docxPara = regexp.MustCompile(`</w:p>`)
	// the main part may be renamed; [Content_Types].xml names it in either attribute order
	docxPart = []*regexp.Regexp{
		regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainType) + `"`),
		regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainType) + `"[^>]+PartName="([^"]+)"`),
	}
)

func readZipFile(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		return data, true, err
	}
	return nil, false, nil
}

// docxText reads the <w:t> runs of the main document part. lu4p/cat only
// matches attribute-less <w:p> elements, which real documents rarely have.
func docxText(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	body := docxBody
	if types, ok, err := readZipFile(zr, docxContentTypes); ok && err == nil {
		for _, re := range docxPart {
			if m := re.FindSubmatch(types); len(m) > 1 {
				body = strings.TrimPrefix(string(m[1]), "/")
				break
			}
		}
	}

	xml, ok, err := readZipFile(zr, body)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: read %s: %w", body, err)
	}
	if !ok {
		return "", fmt.Errorf("extract DOCX: %s not found", body)
	}

	var b strings.Builder
	for _, para := range docxPara.Split(string(xml), -1) {
		runs := docxRun.FindAllStringSubmatch(para, -1)
		if len(runs) == 0 {
			continue
		}
		for _, r := range runs {
			b.WriteString(r[1])
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}
