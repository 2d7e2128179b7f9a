package review

import (
	"fmt"
	"net/url"
)

// AssessmentsListURL is the general assessments list in the admin UI.
const AssessmentsListURL = "/account-manager/assessments"

// RedirectTarget resolves where an attempt-level review action returns to.
// The workflow can be entered from a student's profile or from the
// assessments list; `redirect` and `status` query parameters on the current
// page URL say which, and are read at action time rather than passed in.
func RedirectTarget(currentURL string, studentID uint) string {
	var redirect, status string
	if parsed, err := url.Parse(currentURL); err == nil {
		query := parsed.Query()
		redirect = query.Get("redirect")
		status = query.Get("status")
	}

	var target string
	if redirect == "student" {
		target = fmt.Sprintf("/account-manager/students/%d#student-assessments", studentID)
	} else {
		target = AssessmentsListURL
	}

	if status != "" {
		target += "?status=" + status
	}
	return target
}
