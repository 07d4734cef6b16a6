package assembler

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

func writeTestChart(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	for x := 0; x < 100; x++ {
		img.Set(x, 20, color.Black)
	}
	path := filepath.Join(dir, "SBRY_2026_08_28.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func testSection(t *testing.T, dir string) model.ReportSection {
	t.Helper()
	cr := 0.76
	return model.ReportSection{
		Symbol:    "SBRY",
		Title:     "SBRY - Sainsbury (269.40)",
		ChartPath: writeTestChart(t, dir),
		Ratios: []model.RatioRow{
			{Label: "CURRENT RATIO", Value: &cr},
			{Label: "NAV (£m)", Value: nil},
		},
		Income: model.StatementTable{
			Title:  "Income Statement",
			Header: []string{"LINE ITEM", "2023", "2024"},
			Rows:   [][]string{{"Revenue", "31,491", "32,700"}, {"Operating profit", "(203)", "701"}},
		},
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	asm := New()
	asm.AppendDocument(&model.ReportDocument{
		Sections: []model.ReportSection{testSection(t, dir)},
	})

	got, err := asm.WriteFile(filepath.Join(dir, "spongecake_2026-08-28"))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if filepath.Ext(got) != ".pdf" {
		t.Errorf("extension not appended: %q", got)
	}

	info, err := os.Stat(got)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output is empty")
	}
}

func TestWriteFile_KeepsExistingExtension(t *testing.T) {
	dir := t.TempDir()
	asm := New()
	asm.AppendSection(testSection(t, dir))

	got, err := asm.WriteFile(filepath.Join(dir, "report.pdf"))
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if filepath.Base(got) != "report.pdf" {
		t.Errorf("path = %q", got)
	}
}
