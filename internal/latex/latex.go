package latex

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/kozaktomas/photo-appendix/internal/appendix"
	"github.com/kozaktomas/photo-appendix/internal/config"
	"github.com/kozaktomas/photo-appendix/internal/layout"
)

//go:embed templates/appendix.tex
var templateFS embed.FS

const (
	// graphicSizeMM is the printed size of caption-band graphics
	// (location marker, direction dial).
	graphicSizeMM = 14.0
	// graphicGapMM separates stacked caption-band graphics.
	graphicGapMM = 2.0
	// captionTopGapMM pads the caption text below the image area.
	captionTopGapMM = 1.5
)

// PhotoNode positions one photo on a page. Coordinates are TikZ page
// coordinates (mm from the bottom-left corner, north west anchor).
type PhotoNode struct {
	X, Y        float64
	WidthMM     float64
	MaxHeightMM float64
	Path        string
}

// TextNode positions one caption line in a slot's caption band.
type TextNode struct {
	X, Y    float64
	WidthMM float64
	Text    string
}

// GraphicNode positions one auxiliary graphic in a caption band.
type GraphicNode struct {
	X, Y   float64
	SizeMM float64
	Path   string
}

// TemplatePage holds the placed nodes for a single page.
type TemplatePage struct {
	Photos   []PhotoNode
	Texts    []TextNode
	Graphics []GraphicNode
}

// TemplateData is the root data passed to the LaTeX template.
type TemplateData struct {
	Pages []TemplatePage
	PageW float64
	PageH float64
}

// Writer persists an appendix instruction stream as a PDF via lualatex.
// It implements appendix.DocumentWriter.
type Writer struct {
	cfg config.AppendixConfig
}

// NewWriter creates a document writer for the given page geometry.
func NewWriter(cfg config.AppendixConfig) *Writer {
	return &Writer{cfg: cfg}
}

// WriteDocument renders the instruction stream into a PDF at dest. The
// LaTeX sources and auxiliary graphics live in a temp directory that is
// removed after compilation.
func (w *Writer) WriteDocument(ctx context.Context, instructions []appendix.Instruction, dest string) error {
	tmpDir, err := os.MkdirTemp("", "photo-appendix-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	data, err := w.buildTemplateData(instructions, tmpDir)
	if err != nil {
		return err
	}

	pdfData, err := compileLatex(ctx, data, tmpDir)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dest, pdfData, 0600); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// slotContent accumulates everything placed into one layout slot before
// it is converted to template nodes.
type slotContent struct {
	slot     layout.Slot
	photo    string
	caption  string
	graphics []string
}

// buildTemplateData converts the ordered instruction stream into placed
// template nodes. Graphic payloads are written to tmpDir as PNG files so
// the template can reference them by path.
func (w *Writer) buildTemplateData(instructions []appendix.Instruction, tmpDir string) (TemplateData, error) {
	var pages [][]*slotContent
	var current []*slotContent
	byIndex := make(map[int]*slotContent)
	graphicCount := 0

	get := func(slot layout.Slot) *slotContent {
		if sc, ok := byIndex[slot.Index]; ok {
			return sc
		}
		sc := &slotContent{slot: slot}
		byIndex[slot.Index] = sc
		current = append(current, sc)
		return sc
	}

	for _, in := range instructions {
		switch v := in.(type) {
		case appendix.PageBreak:
			pages = append(pages, current)
			current = nil
			byIndex = make(map[int]*slotContent)
		case appendix.InsertImage:
			get(v.Slot).photo = v.Path
		case appendix.InsertText:
			get(v.Slot).caption = v.Text
		case appendix.InsertGraphic:
			path := filepath.Join(tmpDir, fmt.Sprintf("graphic-%03d.png", graphicCount))
			graphicCount++
			if err := os.WriteFile(path, v.Graphic.PNG, 0600); err != nil {
				return TemplateData{}, fmt.Errorf("failed to write graphic: %w", err)
			}
			sc := get(v.Slot)
			sc.graphics = append(sc.graphics, path)
		}
	}
	pages = append(pages, current)

	data := TemplateData{
		PageW: w.cfg.PageWidthMM,
		PageH: w.cfg.PageHeightMM,
	}
	for _, page := range pages {
		data.Pages = append(data.Pages, w.buildPage(page))
	}
	return data, nil
}

// buildPage converts one page's slot contents into TikZ nodes. Slot
// coordinates are mm from the page top-left; TikZ Y runs from the
// bottom, so vertical positions are flipped against the page height.
func (w *Writer) buildPage(slots []*slotContent) TemplatePage {
	var page TemplatePage
	for _, sc := range slots {
		slot := sc.slot
		if sc.photo != "" {
			page.Photos = append(page.Photos, PhotoNode{
				X:           slot.X,
				Y:           w.cfg.PageHeightMM - slot.Y,
				WidthMM:     slot.ImageWidthMM,
				MaxHeightMM: slot.ImageMaxHeightMM,
				Path:        sc.photo,
			})
		}

		// Caption band starts below the image area. Graphics stack
		// against the right edge; the caption text takes what is left.
		bandTopY := w.cfg.PageHeightMM - (slot.Y + slot.ImageMaxHeightMM + captionTopGapMM)
		for i, path := range sc.graphics {
			n := float64(i)
			page.Graphics = append(page.Graphics, GraphicNode{
				X:      slot.X + slot.ImageWidthMM - (n+1)*graphicSizeMM - n*graphicGapMM,
				Y:      bandTopY,
				SizeMM: graphicSizeMM,
				Path:   path,
			})
		}
		if sc.caption != "" {
			textWidth := slot.ImageWidthMM - float64(len(sc.graphics))*(graphicSizeMM+graphicGapMM)
			page.Texts = append(page.Texts, TextNode{
				X:       slot.X,
				Y:       bandTopY,
				WidthMM: textWidth,
				Text:    sc.caption,
			})
		}
	}
	return page
}

// latexEscape escapes special LaTeX characters in user text.
func latexEscape(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\textbackslash{}`,
		`{`, `\{`,
		`}`, `\}`,
		`%`, `\%`,
		`&`, `\&`,
		`#`, `\#`,
		`$`, `\$`,
		`_`, `\_`,
		`^`, `\textasciicircum{}`,
		`~`, `\textasciitilde{}`,
	)
	return replacer.Replace(s)
}

// compileLatex writes the template and runs lualatex, returning the PDF bytes.
func compileLatex(ctx context.Context, data TemplateData, tmpDir string) ([]byte, error) {
	funcMap := template.FuncMap{
		"latexEscape": latexEscape,
	}
	tmpl, err := template.New("appendix.tex").Funcs(funcMap).ParseFS(templateFS, "templates/appendix.tex")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	texPath := filepath.Join(tmpDir, "appendix.tex")
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	if err := os.WriteFile(texPath, buf.Bytes(), 0600); err != nil {
		return nil, fmt.Errorf("failed to write tex file: %w", err)
	}

	// Run lualatex twice — second pass resolves remember picture positions
	// Arguments are safe (tmpDir from os.MkdirTemp, texPath derived from it)
	for pass := range 2 {
		cmd := exec.CommandContext(ctx, "lualatex", //nolint:gosec
			"-interaction=nonstopmode",
			"-output-directory="+tmpDir,
			texPath,
		)
		cmd.Dir = tmpDir
		output, err := cmd.CombinedOutput()
		if err != nil {
			return nil, fmt.Errorf("lualatex pass %d failed: %w\n%s", pass+1, err, string(output))
		}
	}

	pdfPath := filepath.Join(tmpDir, "appendix.pdf")
	pdfData, err := os.ReadFile(pdfPath) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}

	return pdfData, nil
}
