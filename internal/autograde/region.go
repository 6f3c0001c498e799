// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package autograde

import (
	"strings"

	"github.com/pdiddy/nbprep/pkg/types"
)

// ExtractAndReplace finds regions in the cell source delimited by the begin
// and end markers for language (e.g. "### BEGIN SOLUTION" and
// "### END SOLUTION") and replaces each with a single stub line, indented
// like the begin marker. It rewrites cell.Source in place and reports
// whether at least one region was replaced.
//
// A begin marker without a matching end marker does not count: the lines
// from that marker onward are kept verbatim and no stub is emitted.
func (p *Preprocessor) ExtractAndReplace(cell *types.Cell, language string) bool {
	stub, ok := p.stubFor(language)
	if !ok {
		p.log.Debug("no stub registered, leaving cell as is",
			"language", language, "fallback", string(p.cfg.Fallback))
		return false
	}
	begin, end := p.delimitersFor(language)

	lines := strings.Split(cell.Source, "\n")
	newLines := make([]string, 0, len(lines))
	var pending []string
	var indent string
	inSolution := false
	replaced := false

	for _, line := range lines {
		switch {
		case inSolution && strings.Contains(line, end):
			newLines = append(newLines, indent+stub)
			pending = nil
			inSolution = false
			replaced = true
		case inSolution:
			if strings.Contains(line, begin) {
				p.log.Debug("begin marker inside an open solution region", "line", line)
			}
			pending = append(pending, line)
		case strings.Contains(line, begin):
			inSolution = true
			indent = leadingWhitespace(line)
			pending = append(pending, line)
		default:
			newLines = append(newLines, line)
		}
	}

	if inSolution {
		p.log.Warn("solution region has no end marker, keeping it unchanged",
			"begin", begin, "end", end)
		newLines = append(newLines, pending...)
	}

	cell.Source = strings.Join(newLines, "\n")
	return replaced
}

// stubFor returns the stub for language, applying the fallback policy when
// none is registered. ok is false when the region must be left alone.
func (p *Preprocessor) stubFor(language string) (string, bool) {
	if stub, ok := p.cfg.Stubs[language]; ok {
		return stub, true
	}
	if p.cfg.Fallback == types.FallbackPassthrough {
		return "", false
	}
	return p.cfg.GenericStub, true
}

func (p *Preprocessor) delimitersFor(language string) (begin, end string) {
	if d, ok := p.cfg.Delimiters[language]; ok {
		return d.Begin, d.End
	}
	return p.cfg.BeginDelimiter, p.cfg.EndDelimiter
}

func leadingWhitespace(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}
