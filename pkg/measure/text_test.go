package measure

import (
	"context"
	"strings"
	"testing"
)

func runeCount(s string) float64 { return float64(len([]rune(s))) }

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width float64
		want  []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"wraps", "hello big world", 9, []string{"hello big", "world"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"newline", "a\nb", 10, []string{"a", "b"}},
		{"empty", "", 10, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapText(tt.text, tt.width, runeCount)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("wrapText(%q, %.0f) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestFontMeasurer(t *testing.T) {
	fm, err := NewFontMeasurer(DefaultTypography())
	if err != nil {
		t.Fatalf("NewFontMeasurer: %v", err)
	}
	style := Style{Role: RoleChild, ContextWidth: 500, MaxWidth: 350}
	ctx := context.Background()

	short, err := fm.MeasureText(ctx, Content{Title: "Root"}, style)
	if err != nil {
		t.Fatalf("MeasureText: %v", err)
	}
	if short.Width <= 24 || short.Height <= 20 {
		t.Errorf("short title box too small: %+v", short)
	}

	long, err := fm.MeasureText(ctx, Content{
		Title:       "A considerably longer title that has to wrap onto several lines",
		Description: strings.Repeat("Lorem ipsum dolor sit amet. ", 10),
	}, style)
	if err != nil {
		t.Fatalf("MeasureText: %v", err)
	}
	if long.Width > 350 {
		t.Errorf("wrapped box wider than max: %.0f", long.Width)
	}
	if long.Height <= short.Height*2 {
		t.Errorf("wrapped box should be taller: %+v vs %+v", long, short)
	}

	center, err := fm.MeasureText(ctx, Content{Title: "Root"}, Style{Role: RoleCenter, ContextWidth: 500, MaxWidth: 350})
	if err != nil {
		t.Fatal(err)
	}
	if center.Width <= short.Width {
		t.Errorf("centre title should be set larger: %+v vs %+v", center, short)
	}
}

func TestFontMeasurerDegenerate(t *testing.T) {
	fm, err := NewFontMeasurer(DefaultTypography())
	if err != nil {
		t.Fatal(err)
	}
	_, err = fm.MeasureText(context.Background(), Content{Title: "x"}, Style{ContextWidth: 10, MaxWidth: 10})
	if err == nil {
		t.Error("expected error for a context narrower than the padding")
	}
}

func TestCellMeasurer(t *testing.T) {
	style := Style{Role: RoleChild, ContextWidth: 500, MaxWidth: 350}
	got, err := CellMeasurer{}.MeasureText(context.Background(), Content{Title: "Hello"}, style)
	if err != nil {
		t.Fatal(err)
	}
	// 5 cells of text + 2 border cells, 1 line + 2 border rows
	if got.Width != 7*CellWidth || got.Height != 3*CellHeight {
		t.Errorf("got %+v, want %vx%v", got, 7*CellWidth, 3*CellHeight)
	}

	got, err = CellMeasurer{}.MeasureText(context.Background(), Content{Title: "Hi", Description: "there"}, style)
	if err != nil {
		t.Fatal(err)
	}
	// title, blank, description
	if got.Height != 5*CellHeight {
		t.Errorf("height = %v, want %v", got.Height, 5*CellHeight)
	}

	wide, err := CellMeasurer{}.MeasureText(context.Background(), Content{Title: "日本"}, style)
	if err != nil {
		t.Fatal(err)
	}
	if wide.Width != 6*CellWidth {
		t.Errorf("wide runes width = %v, want %v", wide.Width, 6*CellWidth)
	}
}
