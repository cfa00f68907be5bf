package utils

import (
	"net/url"
	"strings"
)

func AssertInvariant(condition bool, message string) {
	if !condition {
		panic("invariant violated - " + message)
	}
}

// SplitAndTrim splits a comma separated list, trimming whitespace and dropping empty entries.
func SplitAndTrim(list string) []string {
	result := []string{}
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		result = append(result, item)
	}
	return result
}

// IsLocalRedirect reports whether target is a same-site path that is safe to redirect to.
func IsLocalRedirect(target string) bool {
	if target == "" || !strings.HasPrefix(target, "/") {
		return false
	}
	// browsers drop tabs and newlines from URLs, so "/\t/host" ends up as "//host"
	for _, r := range target {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	// browsers treat backslashes as slashes, so "/\host" is scheme-relative as well
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return false
	}
	return parsed.Scheme == "" && parsed.Host == ""
}
