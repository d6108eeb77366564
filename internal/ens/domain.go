package ens

import (
	"regexp"
)

// labels of two or more characters with no hyphen at either end, followed by
// an alphabetic TLD
var domainRegex = regexp.MustCompile(`^(?:[A-Za-z0-9][A-Za-z0-9-]*[A-Za-z0-9]\.)+[A-Za-z]{2,}$`)

func IsValidEnsDomain(domain string) bool {
	return domainRegex.MatchString(domain)
}
