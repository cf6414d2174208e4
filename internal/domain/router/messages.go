package router

import "fmt"

// Headline returns the one-line text that introduces a reply in lang ("en"
// or "hi"). Unknown languages fall back to English. Scheme cards have no
// headline.
func (r Reply) Headline(lang string) string {
	hi := lang == "hi"
	switch r.Kind {
	case KindGreeting:
		if hi {
			return "नमस्ते! किस योजना के बारे में जानना चाहेंगे?"
		}
		return "Hello! What scheme would you like to know about?"
	case KindThanks:
		if hi {
			return "आपका स्वागत है! और मदद चाहिए तो पूछें।"
		}
		return "You're welcome! Ask if you need more help."
	case KindCategory:
		if hi {
			return r.Label + " योजनाएं:"
		}
		return r.Label + " Schemes:"
	case KindResults:
		if hi {
			return fmt.Sprintf("%d योजनाएं मिलीं:", len(r.Schemes))
		}
		return fmt.Sprintf("Found %d scheme(s):", len(r.Schemes))
	case KindNoEligible:
		what := r.Query
		if r.Label != "" {
			what = r.Label
		}
		if hi {
			return fmt.Sprintf("%q के लिए आपकी पात्रता प्रोफ़ाइल से मेल खाती कोई योजना नहीं मिली। पात्रता फ़िल्टर साफ़ करके सभी योजनाएं देखें।", what)
		}
		return fmt.Sprintf("No schemes found matching %q for your eligibility profile. Try a different search or clear eligibility filters to browse all schemes.", what)
	case KindSuggestions:
		if hi {
			return "मैं समझ नहीं पाया। किसान, छात्र, महिला या स्वास्थ्य योजनाओं के बारे में पूछें, या कोई योजना का नाम लिखें जैसे \"पीएम किसान\"।"
		}
		return "I didn't quite get that. Are you looking for farmer schemes, student scholarships, women welfare or health insurance? Or type a scheme name like \"PM Kisan\"."
	default:
		return ""
	}
}
