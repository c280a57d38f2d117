package layout

import (
	"regexp"

	"golang-statement-extractor/internal/models"
)

// Rule labels fragments whose text matches Pattern
type Rule struct {
	Pattern *regexp.Regexp
	Label   models.Label
}

// MustRule compiles pattern into a Rule, panicking on a bad pattern
func MustRule(pattern string, label models.Label) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Label: label}
}

// Classifier assigns a label to a group of fragments using ordered rules.
// The first rule that matches all but at most one fragment wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier. Rule order is significant.
func NewClassifier(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Classify returns the matching fragments and their label. Text is matched
// without its trailing line break. When no rule reaches the threshold the
// whole group comes back with models.LabelNone.
func (c *Classifier) Classify(fragments []Fragment) ([]Fragment, models.Label) {
	for _, rule := range c.rules {
		var matches []Fragment
		for _, f := range fragments {
			if rule.Pattern.MatchString(f.TrimmedText()) {
				matches = append(matches, f)
			}
		}
		if len(matches) > 0 && len(matches) >= len(fragments)-1 {
			return matches, rule.Label
		}
	}
	return fragments, models.LabelNone
}
