package versioning

import (
	"regexp"
	"strconv"
	"strings"
)

var majorMinorRe = regexp.MustCompile(`^(\d+)\.(\d+)`)

// Parse normalizes s to a leading "v" and extracts its major.minor prefix.
func Parse(s string) (Version, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "v")
	m := majorMinorRe.FindStringSubmatch(trimmed)
	if m == nil {
		return Version{}, &InvalidVersionError{Input: s}
	}
	return Version{
		Full:       "v" + trimmed,
		MajorMinor: "v" + m[1] + "." + m[2],
	}, nil
}

// majorMinorOf returns the numeric major and minor of key, if it has them.
func majorMinorOf(key string) (major, minor int, ok bool) {
	m := majorMinorRe.FindStringSubmatch(strings.TrimPrefix(key, "v"))
	if m == nil {
		return 0, 0, false
	}
	major, _ = strconv.Atoi(m[1])
	minor, _ = strconv.Atoi(m[2])
	return major, minor, true
}

// SameMinorLine reports whether key belongs to the same major.minor line as v.
// Components are compared numerically, so v0.4 never matches v0.40.
func SameMinorLine(key string, v Version) bool {
	kMajor, kMinor, ok := majorMinorOf(key)
	if !ok {
		return false
	}
	vMajor, vMinor, ok := majorMinorOf(v.Full)
	return ok && kMajor == vMajor && kMinor == vMinor
}

// DisplayVersion maps a package version string to the version docs are published under.
//
// Dev deploys publish the version as-is with "+" replaced by ".". Other deploys
// publish at most major.minor.patch; a development build such as 0.4.23.dev15
// publishes as v0.4.22 and adjusted is true.
func DisplayVersion(pkgVersion string, dev bool) (display string, adjusted bool, err error) {
	raw := strings.TrimPrefix(strings.TrimSpace(pkgVersion), "v")
	if _, err := Parse(raw); err != nil {
		return "", false, err
	}
	if dev {
		return "v" + strings.ReplaceAll(raw, "+", "."), false, nil
	}
	parts := strings.Split(raw, ".")
	switch {
	case len(parts) == 3:
		return "v" + raw, false, nil
	case len(parts) < 3:
		return "", false, &InvalidVersionError{Input: pkgVersion, Reason: "missing patch component"}
	}
	patch, convErr := strconv.Atoi(parts[2])
	if convErr != nil || patch <= 0 {
		return "", false, &InvalidVersionError{Input: pkgVersion, Reason: "patch must be a positive integer for a development build"}
	}
	return "v" + parts[0] + "." + parts[1] + "." + strconv.Itoa(patch-1), true, nil
}
