package chain

import "strings"

// keywords are the canonical drink check triggers. Variants are derived
// from them at startup.
var keywords = []string{"drink check", "dc"}

// keywordVariants holds every accepted spelling, matched as a substring of
// the lowercased, trimmed message content.
var keywordVariants = buildVariants()

func buildVariants() []string {
	var variants []string
	for _, keyword := range keywords {
		variants = append(variants,
			keyword,
			keyword+"!",
			keyword+"?",
			keyword+".",
		)
	}
	return append(variants, "d c")
}

// Classify decides whether a message qualifies as a drink check. It is a
// pure predicate: no lookups, no side effects.
//
// An attachment is mandatory in every case. A reply with an attachment
// qualifies regardless of content; anything else must contain one of the
// keyword variants.
func Classify(content string, hasAttachment, isReply bool) bool {
	if !hasAttachment {
		return false
	}
	if isReply {
		return true
	}

	content = strings.TrimSpace(strings.ToLower(content))
	for _, variant := range keywordVariants {
		if strings.Contains(content, variant) {
			return true
		}
	}
	return false
}
