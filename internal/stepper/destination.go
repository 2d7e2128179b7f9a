package stepper

// DashboardFallbackURL is where a completed quiz lands when neither the
// server nor the quiz configuration names a destination.
const DashboardFallbackURL = "/dashboard"

// Destination resolves the post-completion redirect target, in priority
// order: the server-supplied intended URL, the quiz's configured topic URL,
// then the dashboard fallback.
func Destination(intendedURL, topicURL string) string {
	if intendedURL != "" {
		return intendedURL
	}
	if topicURL != "" {
		return topicURL
	}
	return DashboardFallbackURL
}
