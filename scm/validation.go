package scm

import (
	"fmt"
	"strings"
)

// ValidateComment rejects empty or whitespace-only comment bodies.
func ValidateComment(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("comment body cannot be empty")
	}

	return nil
}

// ValidateLabels rejects an empty label list or blank label names.
func ValidateLabels(labels ...string) error {
	if len(labels) == 0 {
		return fmt.Errorf("labels cannot be empty")
	}

	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("label name cannot be empty")
		}
	}

	return nil
}

// ValidateIssueState rejects states other than open and closed.
func ValidateIssueState(state IssueState) error {
	switch state {
	case IssueOpen, IssueClosed:
		return nil
	default:
		return fmt.Errorf("invalid issue state %q (expected %q or %q)", state, IssueOpen, IssueClosed)
	}
}
