package files

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

const sheetPreviewRows = 5

func readPDF(path string) (*Content, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", i, err)
		}
		fmt.Fprintf(&b, "--- page %d ---\n%s\n", i, text)
	}

	meta := map[string]any{}
	if info := r.Trailer().Key("Info"); !info.IsNull() {
		for _, key := range []string{"Title", "Author", "Subject", "Creator", "Producer"} {
			if v := info.Key(key).Text(); v != "" {
				meta[strings.ToLower(key)] = v
			}
		}
	}
	return &Content{FileType: "pdf", Content: b.String(), Pages: pages, Metadata: meta}, nil
}

// readWord extracts paragraphs and tables from the WordprocessingML body
// of a .docx archive. Legacy .doc files are not readable.
func readWord(path string) (*Content, error) {
	if strings.ToLower(filepath.Ext(path)) == ".doc" {
		return nil, fmt.Errorf("%w: legacy .doc, convert to .docx", ErrUnsupportedType)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	defer zr.Close()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("open docx: word/document.xml missing")
	}
	rc, err := doc.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	c := &Content{FileType: "word"}
	var (
		b        strings.Builder
		line     strings.Builder
		inText   bool
		tblDepth int
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
				c.Tables++
			case "p":
				if tblDepth == 0 {
					c.Paragraphs++
				}
			case "t":
				inText = true
			case "tab":
				line.WriteByte('\t')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth--
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(line.String()); s != "" {
					b.WriteString(s)
					b.WriteByte('\n')
				}
				line.Reset()
			}
		case xml.CharData:
			if inText {
				line.Write(t)
			}
		}
	}
	c.Content = b.String()
	return c, nil
}

// readExcel reads every sheet of an .xlsx workbook.
func readExcel(path string) (*Content, error) {
	if strings.ToLower(filepath.Ext(path)) == ".xls" {
		return nil, fmt.Errorf("%w: legacy .xls, convert to .xlsx", ErrUnsupportedType)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	c := &Content{FileType: "excel", Metadata: map[string]any{}}
	var b strings.Builder
	names := f.GetSheetList()
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		sheet := Sheet{Name: name, Rows: len(rows)}
		fmt.Fprintf(&b, "Sheet: %s\n", name)
		for i, row := range rows {
			if len(row) > sheet.Columns {
				sheet.Columns = len(row)
			}
			if i < sheetPreviewRows {
				sheet.Preview = append(sheet.Preview, row)
			}
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		c.Sheets = append(c.Sheets, sheet)
	}
	c.Content = b.String()
	c.Metadata["sheets_count"] = len(names)
	c.Metadata["sheet_names"] = names
	if props, err := f.GetDocProps(); err == nil && props != nil {
		c.Metadata["title"] = props.Title
		c.Metadata["creator"] = props.Creator
		c.Metadata["subject"] = props.Subject
	}
	return c, nil
}

func readText(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	return &Content{
		FileType:   "text",
		Content:    text,
		Lines:      len(strings.Split(text, "\n")),
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(text),
	}, nil
}

var languages = map[string]string{
	".py": "python", ".js": "javascript", ".html": "html", ".css": "css",
	".java": "java", ".cpp": "cpp", ".c": "c", ".php": "php",
	".rb": "ruby", ".go": "go", ".rs": "rust", ".swift": "swift",
	".kt": "kotlin", ".scala": "scala",
}

type codePatterns struct {
	functions *regexp.Regexp
	classes   *regexp.Regexp
}

var codeStructure = map[string]codePatterns{
	"python": {
		functions: regexp.MustCompile(`def\s+\w+`),
		classes:   regexp.MustCompile(`class\s+\w+`),
	},
	"javascript": {
		functions: regexp.MustCompile(`function\s+\w+|const\s+\w+\s*=|let\s+\w+\s*=|var\s+\w+\s*=`),
		classes:   regexp.MustCompile(`class\s+\w+`),
	},
	"java": {
		functions: regexp.MustCompile(`(public|private|protected)?\s*(static)?\s*\w+\s+\w+\s*\(`),
		classes:   regexp.MustCompile(`class\s+\w+`),
	},
	"go": {
		functions: regexp.MustCompile(`func\s+(\([^)]*\)\s*)?\w+\s*\(`),
		classes:   regexp.MustCompile(`type\s+\w+\s+(struct|interface)`),
	},
}

func readCode(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	lang, ok := languages[strings.ToLower(filepath.Ext(path))]
	if !ok {
		lang = "unknown"
	}
	c := &Content{
		FileType: "code",
		Content:  text,
		Language: lang,
		Lines:    len(strings.Split(text, "\n")),
		Metadata: map[string]any{"language": lang},
	}
	if p, ok := codeStructure[lang]; ok {
		c.Functions = len(p.functions.FindAllStringIndex(text, -1))
		c.Classes = len(p.classes.FindAllStringIndex(text, -1))
	}
	return c, nil
}
