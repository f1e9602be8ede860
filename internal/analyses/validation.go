package analyses

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateAnalyzeInput(in AnalyzeInput) error {
	var issues []Issue
	if in.File == nil {
		issues = append(issues, Issue{Field: "file", Issue: "required"})
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		issues = append(issues, Issue{Field: "jobDescription", Issue: "required"})
	}
	email := strings.TrimSpace(in.Email)
	switch {
	case email == "":
		issues = append(issues, Issue{Field: "email", Issue: "required"})
	case validate.Var(email, "email") != nil:
		issues = append(issues, Issue{Field: "email", Issue: "invalid"})
	}
	if !in.Consent {
		issues = append(issues, Issue{Field: "consent", Issue: "required"})
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// issuesFromBinding converts gin binding failures into field issues.
func issuesFromBinding(err error) []Issue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Field: "body", Issue: "malformed"}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issue := "invalid"
		if fe.Tag() == "required" {
			issue = "required"
		}
		issues = append(issues, Issue{Field: lowerFirst(fe.Field()), Issue: issue})
	}
	return issues
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
