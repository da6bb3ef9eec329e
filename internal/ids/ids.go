// Package ids implements the external identifier grammar for plans and
// tasks: kebab-case plan slugs, and {slug}:{NNN} task identifiers. These are
// pure functions with no storage dependency so the grammar can be tested and
// reused by the CLI's smart-ID dispatcher without touching a database.
package ids

import (
	"strconv"
	"strings"

	"github.com/taskmesh/taskmesh/internal/taskerr"
)

// ValidateSlug rejects empty slugs, slugs with a leading or trailing hyphen,
// and any slug containing a byte other than ASCII lowercase letters or
// hyphens.
func ValidateSlug(slug string) error {
	if slug == "" {
		return taskerr.New(taskerr.EmptyID, "slug must not be empty", nil)
	}
	if slug[0] == '-' || slug[len(slug)-1] == '-' {
		return taskerr.Newf(taskerr.InvalidKebabCase, nil, "slug %q must not start or end with a hyphen", slug)
	}
	for i := 0; i < len(slug); i++ {
		c := slug[i]
		if (c < 'a' || c > 'z') && c != '-' {
			return taskerr.Newf(taskerr.InvalidKebabCase, nil, "slug %q must contain only lowercase letters and hyphens", slug)
		}
	}
	return nil
}

// FormatTaskID renders the external task identifier {slug}:{number:03}.
func FormatTaskID(slug string, number int) string {
	return slug + ":" + pad3(number)
}

func pad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// ParseTaskID accepts either a bare positive integer (internal numeric ID)
// or a {slug}:{number} external form. It returns exactly one of the two
// result pairs populated: (internalID, true, "", 0) or (0, false, slug, number).
func ParseTaskID(raw string) (internalID int64, isInternal bool, slug string, number int, err error) {
	if raw == "" {
		return 0, false, "", 0, taskerr.New(taskerr.EmptyID, "task id must not be empty", nil)
	}

	if !strings.Contains(raw, ":") {
		n, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil || n <= 0 {
			return 0, false, "", 0, taskerr.Newf(taskerr.InvalidTaskID, perr, "invalid numeric task id %q", raw)
		}
		return n, true, "", 0, nil
	}

	idx := strings.IndexByte(raw, ':')
	slugPart := raw[:idx]
	numPart := raw[idx+1:]

	if slugPart == "" {
		return 0, false, "", 0, taskerr.Newf(taskerr.InvalidTaskID, nil, "task id %q has empty slug", raw)
	}
	if numPart == "" {
		return 0, false, "", 0, taskerr.Newf(taskerr.InvalidTaskID, nil, "task id %q has empty number", raw)
	}
	for i := 0; i < len(numPart); i++ {
		if numPart[i] < '0' || numPart[i] > '9' {
			return 0, false, "", 0, taskerr.Newf(taskerr.InvalidTaskID, nil, "task id %q has non-decimal number", raw)
		}
	}
	n, perr := strconv.Atoi(numPart)
	if perr != nil || n <= 0 {
		return 0, false, "", 0, taskerr.Newf(taskerr.InvalidTaskID, perr, "task id %q has invalid number", raw)
	}
	if err := ValidateSlug(slugPart); err != nil {
		return 0, false, "", 0, err
	}
	return 0, false, slugPart, n, nil
}
