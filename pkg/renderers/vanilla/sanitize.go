package vanilla

import (
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	resultsPolicyOnce sync.Once
	resultsPolicy     *bluemonday.Policy
)

// sanitizeResults restricts rendered results to the elements and attributes
// the results template emits. Custom templates supplied through
// WithTemplatesFS/WithTemplatesDir go through the same policy.
func sanitizeResults(markup []byte) []byte {
	if len(markup) == 0 {
		return nil
	}
	return resultsSanitizer().SanitizeBytes(markup)
}

func resultsSanitizer() *bluemonday.Policy {
	resultsPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("h2", "h3", "div", "ul", "li", "input", "label", "span", "p")

		policy.AllowAttrs("class").OnElements("h2", "h3", "div", "ul", "li", "span", "p")
		policy.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
		policy.AllowAttrs("id", "name").Matching(regexp.MustCompile(`^[A-Za-z0-9_-]+$`)).OnElements("input")
		policy.AllowAttrs("checked", "disabled").OnElements("input")
		policy.AllowAttrs("for").Matching(regexp.MustCompile(`^[A-Za-z0-9_-]+$`)).OnElements("label")

		resultsPolicy = policy
	})
	return resultsPolicy
}
