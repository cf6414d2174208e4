package router

import (
	"regexp"
)

// CategoryPattern routes a query that names a group of people or a need to a
// category listing.
type CategoryPattern struct {
	Pattern  *regexp.Regexp
	Category string
	Label    string
}

// CategoryPatterns are tried in order and the first match wins. Employment
// appears twice: labour queries are checked before housing and health, job
// queries only after banking.
var CategoryPatterns = []CategoryPattern{
	{regexp.MustCompile(`(?i)women|mahila|महिला|lady|female`), "women", "Women"},
	{regexp.MustCompile(`(?i)farmer|kisan|किसान|agriculture|krishi`), "agriculture", "Farmer"},
	{regexp.MustCompile(`(?i)student|scholarship|education|vidyarthi|छात्र`), "education", "Student/Education"},
	{regexp.MustCompile(`(?i)labour|labor|worker|shramik|श्रमिक|मजदूर`), "employment", "Labour/Worker"},
	{regexp.MustCompile(`(?i)senior|pension|vridha|old age|वृद्ध`), "social", "Senior Citizen"},
	{regexp.MustCompile(`(?i)housing|awas|आवास|home|house`), "housing", "Housing"},
	{regexp.MustCompile(`(?i)health|swasthya|स्वास्थ्य|medical`), "health", "Health"},
	{regexp.MustCompile(`(?i)loan|mudra|bank|credit`), "banking", "Banking/Loan"},
	{regexp.MustCompile(`(?i)job|employment|rozgar|रोजगार|skill`), "employment", "Employment"},
}

// Intent is what the user wants to know about a scheme.
type Intent string

const (
	IntentStatus      Intent = "status"
	IntentEligibility Intent = "eligibility"
	IntentDocuments   Intent = "documents"
	IntentApply       Intent = "apply"
	IntentGeneric     Intent = "generic"
)

var intentPatterns = []struct {
	re     *regexp.Regexp
	intent Intent
}{
	{regexp.MustCompile(`status|track|payment|भुगतान`), IntentStatus},
	{regexp.MustCompile(`eligib|योग्यता`), IntentEligibility},
	{regexp.MustCompile(`document|doc|कागज|पात्र|papers`), IntentDocuments},
	{regexp.MustCompile(`apply|process|कैसे|how`), IntentApply},
}

// InferIntent classifies a query by keyword. The first matching intent wins.
func InferIntent(query string) Intent {
	q := normalize(query)
	for _, p := range intentPatterns {
		if p.re.MatchString(q) {
			return p.intent
		}
	}
	return IntentGeneric
}
