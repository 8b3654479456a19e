package comment

import (
	"regexp"
	"strings"

	"github.com/trezcool/reportcard/core"
	"github.com/trezcool/reportcard/core/student"
)

// Placeholder is replaced by the student's first name in comments and templates.
const Placeholder = "[Student Name]"

var (
	quotedPlaceholder = regexp.QuoteMeta(Placeholder)
	commaBeforeRegex  = regexp.MustCompile(`,\s*` + quotedPlaceholder + `\s*`)
	commaAfterRegex   = regexp.MustCompile(quotedPlaceholder + `\s*,\s*`)
	spacesRegex       = regexp.MustCompile(`\s+`)
)

// ApplyName replaces every placeholder in content with the first name of studentName.
func ApplyName(content, studentName string) string {
	firstName := student.FirstName(studentName)
	if firstName == "" {
		return content
	}
	return strings.ReplaceAll(content, Placeholder, firstName)
}

// StripName removes the student's first name from content so it can be reused for another student.
func StripName(content, studentName string) string {
	if firstName := student.FirstName(studentName); firstName != "" {
		content = strings.ReplaceAll(content, firstName, Placeholder)
	}
	content = commaBeforeRegex.ReplaceAllString(content, " ")
	content = commaAfterRegex.ReplaceAllString(content, " ")
	content = strings.ReplaceAll(content, Placeholder, "")
	content = strings.TrimSpace(spacesRegex.ReplaceAllString(content, " "))
	return core.Capitalize(content)
}
