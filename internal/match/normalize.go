package match

import (
	"slices"
	"strings"
	"unicode"
)

// affixes are name tokens that say which side of a node a port is on rather
// than what it carries. "DamageOut" and "Damage" name the same value.
var affixes = []string{"output", "input", "value", "out", "in", "val", "pin", "port"}

// NormalizeName normalizes a pin or port name for fuzzy matching. Names are
// split into words at separators and CamelCase boundaries, lower-cased and
// joined: "hit_Damage", "HitDamage" and "hit-damage" all become "hitdamage".
func NormalizeName(s string) string {
	return strings.Join(TokenizeName(s), "")
}

// NormalizeNameStripped normalizes like NormalizeName and additionally drops
// one leading and one trailing direction word such as "In" or "Out", unless
// nothing would be left.
func NormalizeNameStripped(s string) string {
	tokens := TokenizeName(s)

	if len(tokens) > 1 && isAffix(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}

	if len(tokens) > 1 && isAffix(tokens[0]) {
		tokens = tokens[1:]
	}

	return strings.Join(tokens, "")
}

// TokenizeName splits a name into lower-case words.
//
//   - "DamageOut" -> ["damage", "out"]
//   - "onHitHP" -> ["on", "hit", "hp"]
//   - "HTTPRequest" -> ["http", "request"]
//   - "exec_in" -> ["exec", "in"]
func TokenizeName(s string) []string {
	var (
		tokens  []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsWord(runes, i) {
			flush()
		}

		current = append(current, r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '.'
}

// startsWord reports whether a new word begins at runes[i]: at a lower to
// upper transition ("onHit") or at the last capital of an acronym that is
// followed by a lower-case letter ("HTTPRequest").
func startsWord(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]

	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

func isAffix(token string) bool {
	return slices.Contains(affixes, token)
}
