package versioning

import "fmt"

// LatestKey is the dropdown key used for unversioned, locally generated SDK docs.
const LatestKey = "latest"

// Version is a parsed deploy version.
type Version struct {
	// Full is the version normalized to start with "v", e.g. "v0.4.17".
	Full string
	// MajorMinor is the "v<major>.<minor>" prefix, e.g. "v0.4".
	MajorMinor string
}

func (v Version) String() string { return v.Full }

// InvalidVersionError reports a string that has no leading major.minor component.
type InvalidVersionError struct {
	Input  string
	Reason string
}

func (e *InvalidVersionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
	}
	return fmt.Sprintf("invalid version %q: expected vMAJOR.MINOR[.PATCH]", e.Input)
}
