package snapshot

import (
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/midbel/sheetcalc/grid"
	"github.com/midbel/sheetcalc/layout"
)

const Extension = ".xcz"

type xmlCell struct {
	XMLName xml.Name `xml:"c"`
	Ref     string   `xml:"r,attr"`
	Format  string   `xml:"s,attr,omitempty"`
	Formula string   `xml:"f,omitempty"`
	Value   string   `xml:"v,omitempty"`
}

type xmlSheet struct {
	XMLName xml.Name  `xml:"sheet"`
	Name    string    `xml:"name,attr"`
	Ref     string    `xml:"ref,attr"`
	Cells   []xmlCell `xml:"c"`
}

type xmlName struct {
	XMLName xml.Name `xml:"name"`
	Name    string   `xml:"id,attr"`
	Ref     string   `xml:"ref,attr"`
}

type xmlWorkbook struct {
	XMLName xml.Name   `xml:"workbook"`
	ID      string     `xml:"id,attr"`
	Sheets  []xmlSheet `xml:"sheet"`
	Names   []xmlName  `xml:"names>name"`
}

// WriteFile writes doc to file, zstd compressed.
func WriteFile(file string, doc *grid.Document) error {
	w, err := os.Create(file)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := Write(w, doc); err != nil {
		return err
	}
	return w.Close()
}

func Write(w io.Writer, doc *grid.Document) error {
	z, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	if err := Encode(z, doc); err != nil {
		z.Close()
		return err
	}
	return z.Close()
}

// Encode writes the raw content of the cells of doc as XML. Formulas are
// written as entered; computed values are never stored.
func Encode(w io.Writer, doc *grid.Document) error {
	root := xmlWorkbook{
		ID: doc.ID.String(),
	}
	for _, sh := range doc.Sheets() {
		xs := xmlSheet{
			Name: sh.Name(),
			Ref:  dimension(sh.Size),
		}
		for c := range sh.Cells() {
			xc := xmlCell{
				Ref:    c.Position.Local().Addr(),
				Format: c.Format,
			}
			if raw, ok := strings.CutPrefix(c.Raw, "="); ok {
				xc.Formula = raw
			} else {
				xc.Value = c.Raw
			}
			if xc.Formula == "" && xc.Value == "" && xc.Format == "" {
				continue
			}
			xs.Cells = append(xs.Cells, xc)
		}
		root.Sheets = append(root.Sheets, xs)
	}
	names := doc.Names()
	for _, n := range slices.Sorted(maps.Keys(names)) {
		root.Names = append(root.Names, xmlName{
			Name: n,
			Ref:  names[n].String(),
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(&root); err != nil {
		return fmt.Errorf("%w: fail to write workbook", err)
	}
	return enc.Flush()
}


func dimension(size layout.Dimension) string {
	end := layout.Position{
		Line:   size.Lines,
		Column: size.Columns,
	}
	return "A1:" + end.Addr()
}
