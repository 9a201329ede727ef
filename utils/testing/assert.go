package testing

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
)

// AssertError validates that an error matches expected results.
func AssertError(t *testing.T, err error, wantErr bool) {
	t.Helper()

	if wantErr != (err != nil) {
		t.Fatalf("Expected error = %v, got: %v", wantErr, err)
	}
}

// AssertErrorIs verifies that err wraps target.
func AssertErrorIs(t *testing.T, err, target error) {
	t.Helper()

	if !errors.Is(err, target) {
		t.Fatalf("Expected error wrapping %v, got: %v", target, err)
	}
}

// AssertEqual verifies two values are deeply equal.
func AssertEqual(t *testing.T, got, want any) {
	t.Helper()

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got = %v, want: %v", got, want)
	}
}

// AssertLength verifies the length of a string, slice, or map.
func AssertLength(t *testing.T, got any, want int) {
	t.Helper()

	v := reflect.ValueOf(got)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
	default:
		t.Fatalf("AssertLength: unsupported type %T", got)
	}

	if v.Len() != want {
		t.Fatalf("Expected length %d, got: %d (%v)", want, v.Len(), got)
	}
}

// AssertContains verifies that got contains every value in want. got is a string (substring
// match) or a []string (some element contains the value); want is a string or a []string.
func AssertContains(t *testing.T, got, want any) {
	t.Helper()

	contains := matcher(t, got)

	for _, needle := range needles(t, want) {
		if !contains(needle) {
			t.Errorf("Expected output to contain %q, got: %v", needle, got)
		}
	}
}

// AssertNotContains verifies that got contains none of the unwanted values.
func AssertNotContains(t *testing.T, got any, unwanted []string) {
	t.Helper()

	contains := matcher(t, got)

	for _, needle := range unwanted {
		if contains(needle) {
			t.Errorf("Expected output to not contain %q, got: %v", needle, got)
		}
	}
}

// AssertNotEmpty verifies a string is not empty.
func AssertNotEmpty(t *testing.T, got string) {
	t.Helper()

	if got == "" {
		t.Error("Expected non-empty string")
	}
}

// AssertOutput validates an ordered list of values and its error against expected results.
func AssertOutput(t *testing.T, got, want []string, err error, wantErr bool) {
	t.Helper()

	AssertError(t, err, wantErr)
	AssertLength(t, got, len(want))

	for i, msg := range want {
		if got[i] != msg {
			t.Errorf("Expected output[%d] = %s, got: %s", i, msg, got[i])
		}
	}
}

func matcher(t *testing.T, got any) func(string) bool {
	t.Helper()

	switch v := got.(type) {
	case string:
		return func(needle string) bool { return strings.Contains(v, needle) }
	case []string:
		return func(needle string) bool {
			return slices.ContainsFunc(v, func(item string) bool { return strings.Contains(item, needle) })
		}
	default:
		t.Fatalf("got must be string or []string, got %T", got)
		return nil
	}
}

func needles(t *testing.T, want any) []string {
	t.Helper()

	switch v := want.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	default:
		t.Fatalf("want must be string or []string, got %T", want)
		return nil
	}
}
