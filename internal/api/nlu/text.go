package nlu

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalize folds text into the form every lexicon phrase is stored in:
// NFC, lower case, single spaces. The decomposed sara am (nikhahit + sara aa)
// is a common typing variant and is folded to the precomposed vowel.
func normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "\u0e4d\u0e32", "\u0e33")
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// span is a half-open byte range of the normalized text.
type span struct {
	start, end int
}

func (s span) overlaps(mask []bool) bool {
	for i := s.start; i < s.end; i++ {
		if mask[i] {
			return true
		}
	}
	return false
}

func (s span) mark(mask []bool) {
	for i := s.start; i < s.end; i++ {
		mask[i] = true
	}
}

// occurrences finds every match of phrase in text. Latin phrases must sit on
// word boundaries so that "hi" does not fire inside "chiang"; Thai is written
// without spaces and matches anywhere.
func occurrences(text, phrase string) []span {
	if phrase == "" {
		return nil
	}
	checkStart := isWordByte(phrase[0])
	checkEnd := isWordByte(phrase[len(phrase)-1])

	var out []span
	for from := 0; from <= len(text)-len(phrase); {
		idx := strings.Index(text[from:], phrase)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(phrase)
		ok := true
		if checkStart && start > 0 && isWordByte(text[start-1]) {
			ok = false
		}
		if checkEnd && end < len(text) && isWordByte(text[end]) {
			ok = false
		}
		if ok {
			out = append(out, span{start, end})
			from = end
		} else {
			from = start + 1
		}
	}
	return out
}

// byLength orders phrases longest first so the most specific surface form
// claims a span before any phrase it contains.
func byLength(phrases []string) {
	sort.SliceStable(phrases, func(i, j int) bool {
		return utf8.RuneCountInString(phrases[i]) > utf8.RuneCountInString(phrases[j])
	})
}

func isThai(r rune) bool {
	return r >= 0x0e00 && r <= 0x0e7f
}

// leftovers splits the unconsumed parts of text into candidate keyword tokens.
// Latin words and Thai runs are split apart; punctuation and spaces separate tokens.
func leftovers(text string, consumed []bool) []string {
	var (
		tokens []string
		cur    strings.Builder
		thai   bool
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i, r := range text {
		if consumed[i] {
			flush()
			continue
		}
		switch {
		case isThai(r):
			if !thai {
				flush()
			}
			thai = true
			// ๆ repeats the previous word and never forms a keyword itself
			if r == 'ๆ' {
				flush()
				continue
			}
			cur.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if thai {
				flush()
			}
			thai = false
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func keepKeyword(tok string) bool {
	n := utf8.RuneCountInString(tok)
	first, _ := utf8.DecodeRuneInString(tok)
	if isThai(first) {
		return n >= 3
	}
	if n <= 2 {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
