package utils

// Truncate returns s truncated to maxLen bytes, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Sample returns at most n items from the front of values. Used to log a
// bounded sample of failure reasons.
func Sample(values []string, n int) []string {
	if len(values) <= n {
		return values
	}
	return values[:n]
}
