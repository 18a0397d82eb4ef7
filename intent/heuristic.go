// ABOUTME: Fast local tier heuristic over three keyword sets.
// ABOUTME: Complex phrases beat everything; simple matches are vetoed by layout language.

package intent

import "strings"

// simpleKeywords are pure CSS property/color/cosmetic words. A request made of
// these alone gets the cheap fragment path.
var simpleKeywords = []string{
	"color", "colour", "red", "blue", "green", "yellow", "orange", "purple",
	"pink", "black", "white", "gray", "grey", "background", "font", "bold",
	"italic", "underline", "bigger", "smaller", "larger", "size", "shadow",
	"border", "rounded", "round", "opacity", "hide", "show", "darker", "lighter",
}

// complexPhrases are multi-word phrases implying new structure.
var complexPhrases = []string{
	"build a", "create a", "new page", "new section", "landing page",
	"from scratch", "redesign", "rebuild", "whole page", "entire page",
	"add a form", "sign up form", "make a site",
}

// layoutKeywords are alignment/flex/grid words. Their presence vetoes the
// simple tier: a color change that also repositions things must not get the
// cheap fragment treatment.
var layoutKeywords = []string{
	"align", "center", "centre", "flex", "grid", "layout", "position", "move",
	"row", "column", "justify", "spacing", "arrange", "float", "stack",
	"side by side", "next to each other", "reorder",
}

// LocalTier assigns a tentative tier from the normalized message alone.
// A complex phrase wins outright; a simple keyword wins only when no layout
// keyword co-occurs; everything else defaults to medium.
func LocalTier(normalized string) Tier {
	msg := strings.ToLower(normalized)

	for _, phrase := range complexPhrases {
		if strings.Contains(msg, phrase) {
			return TierFull
		}
	}

	if containsAny(msg, simpleKeywords) && !containsAny(msg, layoutKeywords) {
		return TierSimple
	}

	if containsAny(msg, layoutKeywords) {
		return TierMedium
	}

	return TierMedium
}

// HasLayoutLanguage reports whether the text carries layout-sensitive
// vocabulary. The resolver uses this for its post-resolution tier elevation.
func HasLayoutLanguage(text string) bool {
	return containsAny(strings.ToLower(text), layoutKeywords)
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
