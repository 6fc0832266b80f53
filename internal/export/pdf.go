package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 20.0 // mm
	pdfTitleSize  = 16.0
	pdfBodySize   = 11.0
	pdfLineHeight = 5.5
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockBullet
	blockCode
	blockRule
)

type block struct {
	kind  blockKind
	level int // heading level or list depth
	text  string
}

// notesBlocks flattens the rendered Markdown into printable blocks.
func notesBlocks(md string) ([]block, error) {
	fragment, err := MarkdownToHTML(md)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse notes html: %w", err)
	}
	var out []block
	doc.Find("body").Children().Each(func(_ int, s *goquery.Selection) {
		out = append(out, selectionBlocks(s, 0)...)
	})
	return out, nil
}

func selectionBlocks(s *goquery.Selection, depth int) []block {
	switch name := goquery.NodeName(s); name {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return []block{{kind: blockHeading, level: int(name[1] - '0'), text: collapse(s.Text())}}
	case "ul", "ol":
		var out []block
		ordered := name == "ol"
		s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
			text := collapse(li.Contents().Not("ul, ol").Text())
			if ordered {
				text = fmt.Sprintf("%d. %s", i+1, text)
			}
			out = append(out, block{kind: blockBullet, level: depth, text: text})
			li.ChildrenFiltered("ul, ol").Each(func(_ int, nested *goquery.Selection) {
				out = append(out, selectionBlocks(nested, depth+1)...)
			})
		})
		return out
	case "pre":
		return []block{{kind: blockCode, text: strings.TrimRight(s.Text(), "\n")}}
	case "hr":
		return []block{{kind: blockRule}}
	}
	text := collapse(s.Text())
	if text == "" {
		return nil
	}
	return []block{{kind: blockParagraph, text: text}}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func renderPDF(doc Document) ([]byte, error) {
	blocks, err := notesBlocks(doc.Notes)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("lecturenotes", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", pdfTitleSize)
	pdf.MultiCell(0, 8, tr(doc.Title), "", "L", false)
	pdf.Ln(6)

	for _, b := range blocks {
		switch b.kind {
		case blockHeading:
			size := 12.0
			if b.level <= 2 {
				size = 14.0
			}
			pdf.Ln(2)
			pdf.SetFont("Helvetica", "B", size)
			pdf.MultiCell(0, 7, tr(b.text), "", "L", false)
			pdf.Ln(1)
		case blockBullet:
			indent := 5.0 * float64(b.level+1)
			pdf.SetFont("Helvetica", "", pdfBodySize)
			pdf.SetX(pdfMargin + indent - 4)
			pdf.CellFormat(4, pdfLineHeight, tr("•"), "", 0, "L", false, 0, "")
			pdf.SetLeftMargin(pdfMargin + indent)
			pdf.MultiCell(0, pdfLineHeight, tr(b.text), "", "L", false)
			pdf.SetLeftMargin(pdfMargin)
		case blockCode:
			pdf.SetFont("Courier", "", 10)
			pdf.MultiCell(0, 5, tr(b.text), "", "L", false)
			pdf.Ln(2)
		case blockRule:
			pdf.Ln(4)
		default:
			pdf.SetFont("Helvetica", "", pdfBodySize)
			pdf.MultiCell(0, pdfLineHeight, tr(b.text), "", "L", false)
			pdf.Ln(pdfLineHeight / 2)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
