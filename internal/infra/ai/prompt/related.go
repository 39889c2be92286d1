package prompt

import "strings"

// relatedHeading is the section marker the model is instructed to emit.
// Matching is case-insensitive and tolerates markdown heading prefixes.
const relatedHeading = "related questions:"

// SplitRelatedQuestions separates the model response into the main content
// and the follow-up questions, if a recognizable "Related questions:" section
// is present. When absent, the full response is returned with no questions;
// the assembler supplies generic defaults.
func SplitRelatedQuestions(raw string) (content string, questions []string) {
	lines := strings.Split(raw, "\n")
	cut := -1
	for i, line := range lines {
		t := strings.ToLower(strings.TrimSpace(strings.TrimLeft(line, "#* ")))
		if strings.HasPrefix(t, relatedHeading) {
			cut = i
			break
		}
	}
	if cut < 0 {
		return strings.TrimSpace(raw), nil
	}
	for _, line := range lines[cut+1:] {
		q := strings.TrimSpace(line)
		q = strings.TrimLeft(q, "-*0123456789. ")
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		questions = append(questions, q)
	}
	return strings.TrimSpace(strings.Join(lines[:cut], "\n")), questions
}
