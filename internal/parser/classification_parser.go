// Package parser extracts classification summaries from inference routine output.
package parser

import (
	"regexp"
	"strings"

	"sevoc/internal/domain"
	"sevoc/internal/port"
)

// Marker recognises one kind of summary line.
type Marker struct {
	Name    string
	pattern *regexp.Regexp
}

// scorePair is a "label:score" entry as printed by the routine.
var scorePair = regexp.MustCompile(`[^\s:,]+\s*:\s*\S`)

// NewMarker builds a marker from its words. Matching ignores case and accepts
// any run of whitespace, '-' or '_' between words. The words must stand alone,
// so "results" or "resultset" do not match. The remainder of the line after an
// optional ':' or '=' separator is captured.
func NewMarker(name string, words ...string) Marker {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	expr := `(?i)\b` + strings.Join(quoted, `[\s_-]+`) + `\b\s*([:=])?\s*(.*)$`
	return Marker{Name: name, pattern: regexp.MustCompile(expr)}
}

// Match returns the remainder of line after the marker. Without a separator the
// remainder must hold at least one label:score pair, otherwise the line is prose.
func (m Marker) Match(line string) (string, bool) {
	sub := m.pattern.FindStringSubmatch(line)
	if sub == nil {
		return "", false
	}
	rest := strings.TrimSpace(sub[2])
	if sub[1] == "" && !scorePair.MatchString(rest) {
		return "", false
	}
	return rest, true
}

var (
	MultiClassMarker = NewMarker("multi", "multi", "classification", "result")
	BinaryMarker     = NewMarker("binary", "binary", "classification", "result")
)

// ClassificationParser implements port.ResultParser by scanning for marker lines.
type ClassificationParser struct {
	multi  Marker
	binary Marker
}

// NewClassificationParser creates a parser for the routine's default markers.
func NewClassificationParser() *ClassificationParser {
	return &ClassificationParser{multi: MultiClassMarker, binary: BinaryMarker}
}

var _ port.ResultParser = (*ClassificationParser)(nil)

// Parse never fails. A missing marker leaves its field empty; when a marker
// appears more than once the last line wins.
func (p *ClassificationParser) Parse(rawText string) domain.ClassificationResult {
	var result domain.ClassificationResult
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimRight(line, "\r")
		if v, ok := p.multi.Match(line); ok {
			result.MultiClassSummary = v
			continue
		}
		if v, ok := p.binary.Match(line); ok {
			result.BinarySummary = v
		}
	}
	return result
}
