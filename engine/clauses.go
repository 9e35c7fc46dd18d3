package engine

import (
	"regexp"
	"strconv"
	"strings"

	"clausewise-backend/models"
)

// Segment length thresholds for clause extraction. Segments under
// minSegmentLength are discarded outright; segments at or above
// substantialSegmentLength are kept even without a pattern or keyword hit.
const (
	minSegmentLength         = 30
	substantialSegmentLength = 100
)

var (
	sectionHeaderPattern  = regexp.MustCompile(`(?i)\b(section|clause|article|chapter)\s+([a-z0-9]+(?:\.[0-9]+)*)`)
	numberedClausePattern = regexp.MustCompile(`^(\d+(?:\.\d+)+)\s*[a-zA-Z]`)
	definitionPattern     = regexp.MustCompile(`(?i)\b[a-z]+\s+means\b`)
)

var domainKeywords = []string{
	"covered",
	"insurance",
	"policy",
	"claim",
	"benefit",
	"exclusion",
	"premium",
}

// ExtractClauses splits raw document text into clause candidates. It is a
// pure function of the input: the same text always yields the same clause
// set. Section headers are carried forward onto subsequent clauses until
// the next header appears.
func ExtractClauses(text string) []models.ClauseCandidate {
	var clauses []models.ClauseCandidate

	segments := splitSentences(text)

	var currentSection *string
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if len(segment) < minSegmentLength {
			continue
		}

		if m := sectionHeaderPattern.FindStringSubmatch(segment); m != nil {
			section := m[1] + " " + m[2]
			currentSection = &section
		}

		var clauseNumber *string
		if m := numberedClausePattern.FindStringSubmatch(segment); m != nil {
			clauseNumber = &m[1]
		}

		if !retainSegment(segment, clauseNumber != nil) {
			continue
		}

		if clauseNumber == nil {
			// Fall back to the 1-based position among retained clauses.
			index := strconv.Itoa(len(clauses) + 1)
			clauseNumber = &index
		}

		clauses = append(clauses, models.ClauseCandidate{
			Text:         segment,
			Section:      currentSection,
			ClauseNumber: clauseNumber,
		})
	}

	return clauses
}

// retainSegment decides whether a segment becomes a clause candidate:
// substantial length, a structural pattern, or a domain keyword all qualify.
func retainSegment(segment string, numbered bool) bool {
	if len(segment) >= substantialSegmentLength {
		return true
	}
	if numbered {
		return true
	}
	if sectionHeaderPattern.MatchString(segment) {
		return true
	}
	if definitionPattern.MatchString(segment) {
		return true
	}

	lower := strings.ToLower(segment)
	for _, keyword := range domainKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// sentenceEndPattern splits on terminal punctuation followed by
// whitespace, so decimal-dotted clause numbers like "2.1" survive intact.
var sentenceEndPattern = regexp.MustCompile(`[.!?]\s+`)

func splitSentences(text string) []string {
	segments := sentenceEndPattern.Split(text, -1)
	for i, segment := range segments {
		segments[i] = strings.TrimRight(segment, ".!?")
	}
	return segments
}
