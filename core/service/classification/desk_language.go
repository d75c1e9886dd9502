package classification

import (
	"strings"
	"unicode"

	"desk_server/core/domain"
)

// Script-specific letters. Uzbek Cyrillic without any of these is
// indistinguishable from Russian without any of those, and stays "mixed".
const (
	uzCyrillicLetters = "ўқғҳЎҚҒҲ"
	ruOnlyLetters     = "ыщЫЩ"
)

// Common Uzbek-Latin function words used to tell Uzbek from English when
// the text is pure Latin script.
var uzLatinFunctionWords = map[string]bool{
	"va": true, "bilan": true, "uchun": true, "ham": true, "bor": true,
	"yo'q": true, "yoq": true, "kerak": true, "emas": true, "lekin": true,
	"qilish": true, "bo'ladi": true, "buladi": true, "qanday": true,
	"rahmat": true, "salom": true, "menga": true, "sizga": true,
}

// DetectLanguage inspects script usage and returns the dominant language of
// the text. The result is advisory: it feeds vocabulary mining and
// diagnostics, never a classification decision on its own.
func DetectLanguage(text string) domain.Language {
	var hasCyrillic, hasLatin bool
	var hasUzCyr, hasRuOnly bool

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Cyrillic, r):
			hasCyrillic = true
			if strings.ContainsRune(uzCyrillicLetters, r) {
				hasUzCyr = true
			}
			if strings.ContainsRune(ruOnlyLetters, r) {
				hasRuOnly = true
			}
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLatin = true
		}
	}

	switch {
	case hasCyrillic && hasUzCyr:
		return domain.LangUzCyrillic
	case hasCyrillic && hasRuOnly:
		return domain.LangRussian
	case hasCyrillic:
		// Plain shared-alphabet Cyrillic: accepted ambiguity.
		return domain.LangMixed
	case hasLatin:
		if containsUzFunctionWord(text) {
			return domain.LangUzLatin
		}
		return domain.LangEnglish
	default:
		return domain.LangMixed
	}
}

func containsUzFunctionWord(text string) bool {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:()\"'")
		if uzLatinFunctionWords[w] {
			return true
		}
	}
	return false
}
