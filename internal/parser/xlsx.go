package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tabview-cli/internal/dataset"
)

type xlsxLoader struct{}

func (xlsxLoader) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the selected sheet; the first row is the header.
// If SheetName is empty and SheetIndex <= 0, the first sheet is used.
func (xlsxLoader) Load(p string, opt Options) (*dataset.Table, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	wb, err := openWorkbook(b)
	if err != nil {
		return nil, err
	}
	target, err := wb.sheetPath(opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
	}
	rows, err := wb.rows(target)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(p)
	if len(rows) == 0 {
		return dataset.New(name)
	}
	return dataset.FromRecords(name, rows[0], rows[1:], opt.Infer)
}

type workbook struct {
	zr     *zip.Reader
	sheets []sheetEntry
	rels   map[string]string
	shared []string
}

type sheetEntry struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"id,attr"`
}

func openWorkbook(b []byte) (*workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	wb := &workbook{zr: zr, rels: map[string]string{}}

	var doc struct {
		Sheets []sheetEntry `xml:"sheets>sheet"`
	}
	if err := wb.decode("xl/workbook.xml", &doc); err != nil {
		return nil, err
	}
	wb.sheets = doc.Sheets

	var rels struct {
		Items []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := wb.decode("xl/_rels/workbook.xml.rels", &rels); err != nil {
		return nil, err
	}
	for _, r := range rels.Items {
		wb.rels[r.ID] = r.Target
	}

	var sst struct {
		Items []richText `xml:"si"`
	}
	if err := wb.decode("xl/sharedStrings.xml", &sst); err != nil {
		return nil, err
	}
	for _, si := range sst.Items {
		wb.shared = append(wb.shared, si.String())
	}
	return wb, nil
}

// decode unmarshals a zip member into v. Missing members leave v untouched.
func (wb *workbook) decode(name string, v any) error {
	f := wb.member(name)
	if f == nil {
		return nil
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (wb *workbook) member(name string) *zip.File {
	for _, f := range wb.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (wb *workbook) sheetPath(name string, index int) (string, error) {
	if name != "" {
		for _, s := range wb.sheets {
			if strings.EqualFold(s.Name, name) {
				if rel, ok := wb.rels[s.RID]; ok {
					return relPath(rel), nil
				}
			}
		}
		avail := make([]string, len(wb.sheets))
		for i, s := range wb.sheets {
			avail[i] = s.Name
		}
		return "", fmt.Errorf("sheet %q not found (available: %s)", name, strings.Join(avail, ", "))
	}
	if index <= 0 {
		index = 1
	}
	for _, s := range wb.sheets {
		if s.SheetID == index {
			if rel, ok := wb.rels[s.RID]; ok {
				return relPath(rel), nil
			}
		}
	}
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index), nil
}

type richText struct {
	T    string `xml:"t"`
	Runs []struct {
		T string `xml:"t"`
	} `xml:"r"`
}

func (r richText) String() string {
	if len(r.Runs) == 0 {
		return r.T
	}
	var sb strings.Builder
	sb.WriteString(r.T)
	for _, run := range r.Runs {
		sb.WriteString(run.T)
	}
	return sb.String()
}

type sheetCell struct {
	Ref    string   `xml:"r,attr"`
	Type   string   `xml:"t,attr"`
	V      string   `xml:"v"`
	Inline richText `xml:"is"`
}

// rows streams <row> elements of a worksheet into padded records.
func (wb *workbook) rows(name string) ([][]string, error) {
	f := wb.member(name)
	if f == nil {
		return nil, fmt.Errorf("worksheet %s not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var out [][]string
	width := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "row" {
			continue
		}
		var row struct {
			Cells []sheetCell `xml:"c"`
		}
		if err := dec.DecodeElement(&row, &se); err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", name, len(out)+1, err)
		}
		var rec []string
		for i, c := range row.Cells {
			idx := i
			if ci := columnIndex(c.Ref); ci >= 0 {
				idx = ci
			}
			for len(rec) <= idx {
				rec = append(rec, "")
			}
			rec[idx] = wb.cellText(c)
		}
		if len(rec) > width {
			width = len(rec)
		}
		out = append(out, rec)
	}
	for i, rec := range out {
		for len(rec) < width {
			rec = append(rec, "")
		}
		out[i] = rec
	}
	return out, nil
}

func (wb *workbook) cellText(c sheetCell) string {
	switch c.Type {
	case "s":
		i, err := strconv.Atoi(strings.TrimSpace(c.V))
		if err != nil || i < 0 || i >= len(wb.shared) {
			return ""
		}
		return wb.shared[i]
	case "inlineStr":
		return c.Inline.String()
	default:
		return c.V
	}
}

// columnIndex converts a cell reference like "C12" to a 0-based column index.
func columnIndex(ref string) int {
	idx := 0
	for _, ch := range strings.ToUpper(ref) {
		if ch < 'A' || ch > 'Z' {
			break
		}
		idx = idx*26 + int(ch-'A'+1)
	}
	return idx - 1
}

// relPath turns a workbook relationship target into a zip member name.
// Targets may be absolute ("/xl/worksheets/sheet1.xml") or relative to xl/.
func relPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
