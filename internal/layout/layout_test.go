package layout

import (
	"reflect"
	"testing"

	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/pkg/logger"
)

func quietLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.ErrorLevel,
		Format: logger.TextFormat,
		Output: logger.StderrOutput,
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return log
}

type recordedBox struct {
	origin float64
	text   string
}

func TestWalker_OffsetsCompose(t *testing.T) {
	page := &Container{
		Y: 0,
		Children: []Node{
			&Container{
				Y: 10,
				Children: []Node{
					&Container{
						Y:        5,
						Children: []Node{NewTextBox(2, "deep\n")},
					},
					NewTextBox(1, "sibling\n"),
				},
			},
			&Graphic{Y: 99},
			NewTextBox(7, "top\n"),
		},
	}

	var got []recordedBox
	stats := NewWalker(quietLogger(t)).Walk(page, VisitorFunc(func(origin float64, box *TextBox) {
		got = append(got, recordedBox{origin, box.Text()})
	}))

	want := []recordedBox{
		{17, "deep\n"},
		{11, "sibling\n"},
		{7, "top\n"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("visited %+v, want %+v", got, want)
	}
	if stats.TextBoxes != 3 || stats.Graphics != 1 || stats.Containers != 3 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.MaxDepth != 3 {
		t.Errorf("expected max depth 3, got %d", stats.MaxDepth)
	}
}

func TestWalker_EmptyAndGraphicOnly(t *testing.T) {
	calls := 0
	v := VisitorFunc(func(float64, *TextBox) { calls++ })
	w := NewWalker(quietLogger(t))

	w.Walk(&Container{}, v)
	w.Walk(&Container{Children: []Node{&Graphic{}, &Graphic{}}}, v)

	if calls != 0 {
		t.Errorf("expected no visits, got %d", calls)
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(
		MustRule(`^\d{2}/\d{2}$`, models.LabelDate),
		MustRule(`^[0-9]*\.[0-9]{2}$`, models.LabelPrice),
	)

	frag := func(texts ...string) []Fragment {
		return NewTextBox(0, texts...).Fragments
	}

	tests := []struct {
		name      string
		input     []Fragment
		wantLabel models.Label
		wantTexts []string
	}{
		{"single date", frag("03/14\n"), models.LabelDate, []string{"03/14\n"}},
		{"single price", frag("4.50\n"), models.LabelPrice, []string{"4.50\n"}},
		{"free text", frag("COFFEE SHOP\n"), models.LabelNone, []string{"COFFEE SHOP\n"}},
		{"all dates", frag("03/14\n", "03/15\n", "03/16\n"), models.LabelDate, []string{"03/14\n", "03/15\n", "03/16\n"}},
		{"all but one tolerated", frag("03/14\n", "\n", "03/16\n"), models.LabelDate, []string{"03/14\n", "03/16\n"}},
		{"two strays rejected", frag("03/14\n", "x\n", "y\n"), models.LabelNone, []string{"03/14\n", "x\n", "y\n"}},
		{"pair with one match", frag("4.50\n", "USD\n"), models.LabelPrice, []string{"4.50\n"}},
		{"first rule wins", frag("03/14\n", "4.50\n"), models.LabelDate, []string{"03/14\n"}},
		{"partial match is not a match", frag("03/14/23\n"), models.LabelNone, []string{"03/14/23\n"}},
		{"empty group", nil, models.LabelNone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, label := c.Classify(tt.input)
			if label != tt.wantLabel {
				t.Errorf("label = %q, want %q", label, tt.wantLabel)
			}
			var texts []string
			for _, f := range got {
				texts = append(texts, f.Text)
			}
			if !reflect.DeepEqual(texts, tt.wantTexts) {
				t.Errorf("fragments = %q, want %q", texts, tt.wantTexts)
			}
		})
	}
}

func TestRowSet_MergesSameKeyAcrossContainers(t *testing.T) {
	rows := NewRowSet()
	page := &Container{
		Children: []Node{
			&Container{Y: 100, Children: []Node{NewTextBox(0, "03/14\n")}},
			&Container{Y: 40, Children: []Node{NewTextBox(60, "COFFEE SHOP\n")}},
			&Container{Y: 100.5, Children: []Node{NewTextBox(0, "4.50\n")}},
		},
	}
	c := NewClassifier(
		MustRule(`^\d{2}/\d{2}$`, models.LabelDate),
		MustRule(`^[0-9]*\.[0-9]{2}$`, models.LabelPrice),
	)

	NewWalker(quietLogger(t)).Walk(page, VisitorFunc(func(origin float64, box *TextBox) {
		matches, label := c.Classify(box.Fragments)
		for _, m := range matches {
			rows.Insert(origin+m.Y, models.LabeledFragment{Label: label, Text: m.TrimmedText()})
		}
	}))

	if rows.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", rows.Len())
	}
	all := rows.Rows()
	if all[0].Key != 100 || all[1].Key != 100.5 {
		t.Errorf("unexpected keys %v, %v", all[0].Key, all[1].Key)
	}
	if !all[0].HasExactly(models.LabelNone, models.LabelDate) {
		t.Errorf("expected merged row with date and free text, got %v", all[0].Labels())
	}
	if all[1].Len() != 1 || !all[1].Has(models.LabelPrice) {
		t.Errorf("expected price alone on second row, got %v", all[1].Labels())
	}
}

func TestRowSet_LastWriteWins(t *testing.T) {
	rows := NewRowSet()
	rows.Insert(5, models.LabeledFragment{Label: models.LabelNone, Text: "first"})
	rows.Insert(5, models.LabeledFragment{Label: models.LabelDate, Text: "03/14"})
	rows.Insert(5, models.LabeledFragment{Label: models.LabelNone, Text: "second"})

	row := rows.Rows()[0]
	if row.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", row.Len())
	}
	if row.Entries[0].Text != "second" {
		t.Errorf("expected replacement in place, got %+v", row.Entries)
	}
	if got, _ := row.Get(models.LabelDate); got.Text != "03/14" {
		t.Errorf("unexpected date entry %+v", got)
	}
}

func TestRowSet_OrderingAndReset(t *testing.T) {
	rows := NewRowSet()
	for _, k := range []float64{300, -2, 101.5, 100} {
		rows.Insert(k, models.LabeledFragment{Text: "x"})
	}

	var keys []float64
	for _, r := range rows.Rows() {
		keys = append(keys, r.Key)
	}
	if !reflect.DeepEqual(keys, []float64{-2, 100, 101.5, 300}) {
		t.Errorf("rows not ascending: %v", keys)
	}

	rows.Reset()
	if rows.Len() != 0 || len(rows.Rows()) != 0 {
		t.Error("expected empty row set after reset")
	}
}

func TestRow_Labels(t *testing.T) {
	row := &Row{Entries: []models.LabeledFragment{
		{Label: models.LabelPrice}, {Label: models.LabelNone}, {Label: models.LabelDate},
	}}

	want := []models.Label{models.LabelNone, models.LabelDate, models.LabelPrice}
	if !reflect.DeepEqual(row.Labels(), want) {
		t.Errorf("Labels() = %v, want %v", row.Labels(), want)
	}
	if row.HasExactly(models.LabelDate, models.LabelPrice) {
		t.Error("HasExactly should fail on size mismatch")
	}
	if !row.HasExactly(models.LabelDate, models.LabelPrice, models.LabelNone) {
		t.Error("HasExactly should ignore argument order")
	}
}
