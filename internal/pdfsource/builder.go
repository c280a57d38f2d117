package pdfsource

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"golang-statement-extractor/internal/layout"
)

// Phrase is a run of characters on one line that share a font and sit
// close enough to read as one piece of text
type Phrase struct {
	X, Y, W float64
	Text    string
}

// BuildPage turns the characters and rectangles of one page into a layout
// tree. Every phrase becomes its own text box at the phrase baseline, so
// phrases on one line share a row key. Rectangles become graphics only
// when textOnly is false.
func BuildPage(chars []pdf.Text, rects []pdf.Rect, opts Options) *layout.Container {
	page := &layout.Container{}

	for _, p := range FindPhrases(chars, opts.LineNudge) {
		page.Children = append(page.Children, &layout.TextBox{
			Y:         p.Y,
			Fragments: []layout.Fragment{{Text: p.Text + "\n"}},
		})
	}

	if !opts.TextOnly {
		for _, r := range rects {
			page.Children = append(page.Children, &layout.Graphic{Y: r.Min.Y})
		}
	}

	return page
}

// FindPhrases groups positioned characters into phrases. Characters whose
// baselines differ by less than nudge are snapped onto one line first.
func FindPhrases(chars []pdf.Text, nudge float64) []Phrase {
	if len(chars) == 0 {
		return nil
	}

	cs := make([]pdf.Text, 0, len(chars))
	for _, c := range chars {
		if c.S != "" {
			cs = append(cs, c)
		}
	}

	sort.Sort(pdf.TextVertical(cs))
	old := math.Inf(-1)
	for i, c := range cs {
		if c.Y != old && math.Abs(old-c.Y) < nudge {
			cs[i].Y = old
		} else {
			old = c.Y
		}
	}
	sort.Sort(pdf.TextVertical(cs))

	var phrases []Phrase
	for i := 0; i < len(cs); {
		j := i + 1
		for j < len(cs) && cs[j].Y == cs[i].Y {
			j++
		}

		for k := i; k < j; {
			ck := cs[k]
			var sb strings.Builder
			sb.WriteString(ck.S)
			end := ck.X + ck.W
			charSpace := ck.FontSize / 6
			wordSpace := ck.FontSize * 2 / 3

			l := k + 1
			for ; l < j; l++ {
				cl := cs[l]
				if !sameFont(cl, ck) {
					break
				}
				if cl.X <= end+charSpace {
					sb.WriteString(cl.S)
				} else if cl.X <= end+wordSpace {
					sb.WriteString(" ")
					sb.WriteString(cl.S)
				} else {
					break
				}
				end = cl.X + cl.W
			}

			if text := strings.TrimSpace(sb.String()); text != "" {
				phrases = append(phrases, Phrase{X: ck.X, Y: ck.Y, W: end - ck.X, Text: text})
			}
			k = l
		}
		i = j
	}

	return phrases
}

func sameFont(a, b pdf.Text) bool {
	return baseFont(a.Font) == baseFont(b.Font) && math.Abs(a.FontSize-b.FontSize) < 0.1
}

func baseFont(f string) string {
	for _, suffix := range []string{",Italic", "-Italic", ",Bold", "-Bold"} {
		f = strings.TrimSuffix(f, suffix)
	}
	return f
}
