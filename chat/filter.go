// Package chat provides the text transforms applied to player messages before
// they are matched against the secret word or broadcast.
package chat

import (
	"html"
	"regexp"
	"strings"
)

// profanityWords are masked in chat and guesses.
var profanityWords = []string{
	"fuck", "shit", "ass", "bitch", "damn", "crap", "dick", "cock",
	"bastard", "slut", "whore",
	"chutiya", "madarchod", "behenchod", "gandu", "harami",
}

var profanityRegexp = regexp.MustCompile(`(?i)\b(` + strings.Join(profanityWords, "|") + `)\b`)

// maxMessageLength bounds chat text.
const maxMessageLength = 200

// Filter replaces each profane word with asterisks of the same length.
func Filter(text string) string {
	return profanityRegexp.ReplaceAllStringFunc(text, func(match string) string {
		return strings.Repeat("*", len(match))
	})
}

// Clean trims, profanity-masks, and HTML-escapes text for broadcast.
func Clean(text string) string {
	return html.EscapeString(Filter(strings.TrimSpace(text)))
}

// CleanMessage is Clean with the chat length bound applied first.
func CleanMessage(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > maxMessageLength {
		text = text[:maxMessageLength]
	}
	return html.EscapeString(Filter(text))
}
