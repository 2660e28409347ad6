package domain

// allLanguages is the canonical order used when languages.type is "all".
var allLanguages = [...]string{
	"af", "am", "ar", "bg", "ca", "cs", "da", "de", "el", "en",
	"es", "et", "fi", "fil", "fr", "he", "hi", "hr", "hu", "id",
	"is", "it", "ja", "ko", "lt", "lv", "ms", "nl", "no", "pl",
	"pt", "ro", "ru", "sk", "sl", "sr", "sv", "sw", "th", "tr",
	"uk", "vi", "zh", "zu",
}

// AllLanguages returns a fresh copy of the canonical language table.
func AllLanguages() []string {
	out := make([]string, len(allLanguages))
	copy(out, allLanguages[:])
	return out
}
