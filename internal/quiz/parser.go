package quiz

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

const (
	answerPrefix      = "Answer:"
	explanationPrefix = "Explanation:"
	referencePrefix   = "[Reference"

	// A block needs a prompt, at least one choice, an answer line and an
	// explanation line.
	minBlockLines = 6
)

var (
	// A question starts at a line beginning "<digits>." plus whitespace.
	// The split consumes only the newline so the ordinal line stays with
	// the block it opens.
	blockBoundary = regexp2.MustCompile(`\n(?=[0-9]+\.\s)`, regexp2.None)

	ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)
	choiceLine    = regexp.MustCompile(`^([A-E])\.\s\s*(.*)$`)
)

// ParseOptions tunes the parser.
type ParseOptions struct {
	// ExcludeReferences drops explanation lines that begin with "[Reference".
	ExcludeReferences bool
}

// ParseStats counts what happened to each block during a parse.
type ParseStats struct {
	Blocks           int `json:"blocks"`
	Kept             int `json:"kept"`
	DroppedShort     int `json:"dropped_short"`
	DroppedNoChoices int `json:"dropped_no_choices"`
	DroppedDuplicate int `json:"dropped_duplicate"`
}

// Dropped is the total number of discarded blocks.
func (s ParseStats) Dropped() int {
	return s.DroppedShort + s.DroppedNoChoices + s.DroppedDuplicate
}

// Parser turns plain quiz text into questions. It is best-effort: malformed
// blocks are skipped silently and Parse never fails.
type Parser struct {
	opts ParseOptions
}

func NewParser(opts ParseOptions) *Parser {
	return &Parser{opts: opts}
}

// ParseQuestions parses text with default options.
func ParseQuestions(text string) []*Question {
	return NewParser(ParseOptions{}).Parse(text)
}

func (p *Parser) Parse(text string) []*Question {
	questions, _ := p.ParseWithStats(text)
	return questions
}

// ParseWithStats parses text and reports how many blocks were kept or
// dropped, and why.
func (p *Parser) ParseWithStats(text string) ([]*Question, ParseStats) {
	var stats ParseStats
	questions := []*Question{}
	seen := make(map[string]bool)

	for _, block := range splitBlocks(normalizeNewlines(text)) {
		stats.Blocks++

		lines := nonBlankLines(strings.TrimSpace(block))
		if len(lines) < minBlockLines {
			stats.DroppedShort++
			continue
		}

		prompt := strings.TrimSpace(ordinalPrefix.ReplaceAllString(lines[0], ""))
		key := normalizedText(prompt)
		if seen[key] {
			stats.DroppedDuplicate++
			continue
		}
		seen[key] = true

		q := &Question{Text: prompt}
		for _, line := range lines[1:] {
			m := choiceLine.FindStringSubmatch(line)
			if m == nil {
				break
			}
			q.setChoice(m[1], strings.TrimSpace(m[2]))
		}
		if len(q.Choices) == 0 {
			stats.DroppedNoChoices++
			continue
		}

		q.Answers = parseAnswers(lines)
		q.Explanation = p.parseExplanation(lines)

		questions = append(questions, q)
		stats.Kept++
	}

	return questions, stats
}

// splitBlocks cuts text at every question boundary. regexp2 reports rune
// offsets, so slicing happens on runes.
func splitBlocks(text string) []string {
	runes := []rune(text)
	var blocks []string
	start := 0

	m, err := blockBoundary.FindRunesMatch(runes)
	for err == nil && m != nil {
		blocks = append(blocks, string(runes[start:m.Index]))
		start = m.Index + m.Length
		m, err = blockBoundary.FindNextMatch(m)
	}

	return append(blocks, string(runes[start:]))
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}

func nonBlankLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func parseAnswers(lines []string) []string {
	answers := []string{}
	for _, line := range lines {
		if !strings.HasPrefix(line, answerPrefix) {
			continue
		}
		raw := strings.TrimSpace(strings.TrimPrefix(line, answerPrefix))
		for _, piece := range strings.Split(raw, ",") {
			piece = strings.ToUpper(strings.TrimSpace(piece))
			if piece != "" {
				answers = append(answers, piece)
			}
		}
		break
	}
	return answers
}

func (p *Parser) parseExplanation(lines []string) string {
	start := -1
	for i, line := range lines {
		if strings.HasPrefix(line, explanationPrefix) {
			start = i
			break
		}
	}
	if start == -1 {
		return ""
	}

	var parts []string
	if inline := strings.TrimSpace(strings.TrimPrefix(lines[start], explanationPrefix)); inline != "" {
		parts = append(parts, inline)
	}
	for _, line := range lines[start+1:] {
		if p.opts.ExcludeReferences && strings.HasPrefix(line, referencePrefix) {
			continue
		}
		parts = append(parts, strings.TrimSpace(line))
	}

	return strings.Join(parts, " ")
}
