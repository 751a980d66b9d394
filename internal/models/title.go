// Sirius Tracker - SiriusXM Comedy Airplay Tracking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/siriustracker

package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeTitle collapses runs of whitespace and capitalizes each word:
// the first rune is upper-cased and the rest lower-cased.
//
//	"bit  about CATS" -> "Bit About Cats"
//	"don't stop"      -> "Don't Stop"
//
// Both the poller and the catalog import use it, so titles from either
// side compare equal.
func NormalizeTitle(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError && size <= 1 {
		return strings.ToLower(w)
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(w[size:])
}
