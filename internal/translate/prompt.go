package translate

import "fmt"

// PromptVersion identifies the instruction template baked into this build.
// It is recorded on every session so exported reports can tell which
// template produced a given result.
const PromptVersion = "poster-v1"

// SupportedLanguages lists the target languages the prompt template has been
// verified against
var SupportedLanguages = []string{
	"Simplified Chinese",
	"English",
	"Japanese",
	"Korean",
	"German",
	"French",
	"Spanish",
	"Russian",
	"Portuguese",
	"Arabic",
	"Italian",
	"Thai",
	"Vietnamese",
	"Indonesian",
}

// IsSupportedLanguage reports whether the template supports the given target language
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// BuildPrompt renders the instruction sent alongside each image. Product
// text, trademarks and logos must stay untranslated, and the output has to
// be the full composited image rather than a text answer.
func BuildPrompt(targetLanguage string) string {
	return fmt.Sprintf(
		"Professionally translate all readable text in this poster into %s, "+
			"keeping the layout, style and imagery consistent with the original. "+
			"Text on the product itself, trademarks, packaging labels and logos must remain untranslated. "+
			"Output the complete composited poster image.",
		targetLanguage)
}
