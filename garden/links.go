package garden

import (
	"regexp"
	"strconv"
)

var resolvesPattern = regexp.MustCompile(`(?i)resolves #\s*(\d+)`)

// ExtractIssueIDs returns every issue referenced as "resolves #<id>" in body, in order of
// appearance. Duplicates are kept. Bodies without references (or with numbers too large to
// parse) yield an empty slice.
func ExtractIssueIDs(body string) []int {
	ids := make([]int, 0)

	for _, match := range resolvesPattern.FindAllStringSubmatch(body, -1) {
		id, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}

		ids = append(ids, id)
	}

	return ids
}
