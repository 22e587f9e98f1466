package latex

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/kozaktomas/photo-appendix/internal/appendix"
	"github.com/kozaktomas/photo-appendix/internal/config"
	"github.com/kozaktomas/photo-appendix/internal/layout"
	"github.com/kozaktomas/photo-appendix/internal/render"
)

func TestLatexEscape(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"50% off & more", `50\% off \& more`},
		{"a_b #1 $5", `a\_b \#1 \$5`},
		{"x^2 ~home", `x\textasciicircum{}2 \textasciitilde{}home`},
		{`back\slash {braces}`, `back\textbackslash{}slash \{braces\}`},
	}
	for _, tc := range cases {
		if got := latexEscape(tc.in); got != tc.want {
			t.Errorf("latexEscape(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildTemplateData(t *testing.T) {
	cfg := config.Load().Appendix
	cfg.ImagesPerPage = 2
	w := NewWriter(cfg)
	tmpDir := t.TempDir()

	plan := layout.Plan(3, cfg)
	graphic := &render.Graphic{PNG: []byte("png-bytes"), Width: 192, Height: 192}
	instructions := []appendix.Instruction{
		appendix.InsertImage{Path: "a.jpg", Slot: plan[0]},
		appendix.InsertText{Text: "First", Slot: plan[0]},
		appendix.InsertGraphic{Kind: appendix.GraphicLocationMarker, Graphic: graphic, Slot: plan[0]},
		appendix.InsertGraphic{Kind: appendix.GraphicDirectionIndicator, Graphic: graphic, Slot: plan[0]},
		appendix.InsertImage{Path: "b.jpg", Slot: plan[1]},
		appendix.InsertText{Text: "Second", Slot: plan[1]},
		appendix.PageBreak{},
		appendix.InsertImage{Path: "c.jpg", Slot: plan[2]},
		appendix.InsertText{Text: "Third", Slot: plan[2]},
	}

	data, err := w.buildTemplateData(instructions, tmpDir)
	if err != nil {
		t.Fatalf("buildTemplateData failed: %v", err)
	}

	if len(data.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(data.Pages))
	}
	if data.PageW != cfg.PageWidthMM || data.PageH != cfg.PageHeightMM {
		t.Errorf("page geometry not carried over: %gx%g", data.PageW, data.PageH)
	}

	first := data.Pages[0]
	if len(first.Photos) != 2 || len(first.Texts) != 2 || len(first.Graphics) != 2 {
		t.Fatalf("unexpected first page contents: %d photos, %d texts, %d graphics",
			len(first.Photos), len(first.Texts), len(first.Graphics))
	}

	// TikZ Y runs from the bottom, so the top slot lands near the top of
	// the page.
	photo := first.Photos[0]
	wantY := cfg.PageHeightMM - plan[0].Y
	if photo.Y != wantY {
		t.Errorf("photo Y = %g, want %g", photo.Y, wantY)
	}
	if photo.WidthMM != plan[0].ImageWidthMM || photo.MaxHeightMM != plan[0].ImageMaxHeightMM {
		t.Errorf("photo sizing does not match the slot: %+v", photo)
	}

	// Graphics stack against the slot's right edge, newest leftmost.
	g0, g1 := first.Graphics[0], first.Graphics[1]
	wantRight := plan[0].X + plan[0].ImageWidthMM
	if g0.X+g0.SizeMM != wantRight {
		t.Errorf("first graphic should touch the right edge: x=%g size=%g right=%g", g0.X, g0.SizeMM, wantRight)
	}
	if g1.X >= g0.X {
		t.Errorf("second graphic should sit left of the first: %g vs %g", g1.X, g0.X)
	}

	// Caption text yields width to the graphics beside it.
	if first.Texts[0].WidthMM >= first.Texts[1].WidthMM {
		t.Errorf("caption next to graphics should be narrower: %g vs %g",
			first.Texts[0].WidthMM, first.Texts[1].WidthMM)
	}

	// Graphic payloads land as PNG files in the temp dir.
	files, err := filepath.Glob(filepath.Join(tmpDir, "graphic-*.png"))
	if err != nil || len(files) != 2 {
		t.Fatalf("expected 2 graphic files, got %v (%v)", files, err)
	}
	content, err := os.ReadFile(files[0])
	if err != nil || string(content) != "png-bytes" {
		t.Errorf("graphic file content mismatch: %q (%v)", content, err)
	}

	second := data.Pages[1]
	if len(second.Photos) != 1 || second.Photos[0].Path != "c.jpg" {
		t.Errorf("unexpected second page contents: %+v", second)
	}
}

func TestBuildTemplateDataEmptyStream(t *testing.T) {
	w := NewWriter(config.Load().Appendix)
	data, err := w.buildTemplateData(nil, t.TempDir())
	if err != nil {
		t.Fatalf("buildTemplateData failed: %v", err)
	}
	if len(data.Pages) != 1 {
		t.Fatalf("empty stream should still yield one blank page, got %d", len(data.Pages))
	}
}

func TestTemplateRenders(t *testing.T) {
	funcMap := template.FuncMap{"latexEscape": latexEscape}
	tmpl, err := template.New("appendix.tex").Funcs(funcMap).ParseFS(templateFS, "templates/appendix.tex")
	if err != nil {
		t.Fatalf("failed to parse template: %v", err)
	}

	data := TemplateData{
		PageW: 210,
		PageH: 297,
		Pages: []TemplatePage{
			{
				Photos: []PhotoNode{{X: 15, Y: 282, WidthMM: 180, MaxHeightMM: 115.5, Path: "/tmp/a.jpg"}},
				Texts:  []TextNode{{X: 15, Y: 165, WidthMM: 180, Text: "100% sunshine & clouds"}},
			},
			{
				Graphics: []GraphicNode{{X: 181, Y: 165, SizeMM: 14, Path: "/tmp/graphic-000.png"}},
			},
		},
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		t.Fatalf("failed to execute template: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`paperwidth=210.0mm`,
		`\includegraphics[width=180.00mm, height=115.50mm, keepaspectratio]`,
		`100\% sunshine \& clouds`,
		`\newpage`,
		`graphic-000.png`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered template missing %q", want)
		}
	}
	if strings.Count(out, `\begin{tikzpicture}`) != 2 {
		t.Errorf("expected one tikzpicture per page:\n%s", out)
	}
}
