package parsers

import (
	"strings"

	"golang-statement-extractor/internal/layout"
	"golang-statement-extractor/internal/models"
	"golang-statement-extractor/pkg/logger"
)

// PageScanner is the layout.Visitor for one page. It classifies each text
// box, clusters the results into rows and watches for the section header
// and account identifier markers.
type PageScanner struct {
	format     *FormatConfig
	classifier *layout.Classifier
	rows       *layout.RowSet
	logger     logger.Logger

	header  bool
	account string

	// row key of an account marker whose number sits in a later phrase
	pendingKey float64
	pending    bool
}

// NewPageScanner creates a scanner for the given format
func NewPageScanner(fc *FormatConfig, log logger.Logger) (*PageScanner, error) {
	classifier, err := fc.Classifier()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &PageScanner{
		format:     fc,
		classifier: classifier,
		rows:       layout.NewRowSet(),
		logger:     log.WithComponent("page_scanner").WithField("format", fc.Name),
	}, nil
}

// Reset clears all per-page state
func (s *PageScanner) Reset() {
	s.rows.Reset()
	s.header = false
	s.account = ""
	s.pending = false
}

// VisitTextBox implements layout.Visitor
func (s *PageScanner) VisitTextBox(origin float64, box *layout.TextBox) {
	text := box.Text()

	if s.format.SectionMarker != "" && !s.header && strings.Contains(text, s.format.SectionMarker) {
		s.logger.Debugf("Found section header at %.2f", origin)
		s.header = true
	}

	key := origin
	if len(box.Fragments) > 0 {
		key += box.Fragments[0].Y
	}
	s.scanAccount(key, text)

	matches, label := s.classifier.Classify(box.Fragments)
	for _, m := range matches {
		key := origin + m.Y
		s.logger.Debugf("%s[%f]: %s", label, key, m.TrimmedText())
		s.rows.Insert(key, models.LabeledFragment{Label: label, Text: m.TrimmedText()})
	}
}

func (s *PageScanner) scanAccount(key float64, text string) {
	rule := s.format.Account
	if account, ok := rule.Extract(text); ok {
		s.logger.Debugf("Found account identifier: %s", account)
		s.account = account
		s.pending = false
		return
	}
	if rule.HasMarker(text) {
		s.pendingKey, s.pending = key, true
		return
	}
	if s.pending && key == s.pendingKey {
		if account, ok := rule.Value(text); ok {
			s.logger.Debugf("Found account identifier beside marker: %s", account)
			s.account = account
			s.pending = false
		}
	}
}

// HasSection reports whether the page holds a transaction section. Formats
// without a section marker always do.
func (s *PageScanner) HasSection() bool {
	return s.format.SectionMarker == "" || s.header
}

// Account returns the account identifier seen on the page, if any
func (s *PageScanner) Account() string {
	return s.account
}

// Rows returns the page's rows in ascending key order
func (s *PageScanner) Rows() []*layout.Row {
	return s.rows.Rows()
}
