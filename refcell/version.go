package refcell

import "golang.org/x/mod/semver"

// Version information for the refcell module.
const (
	// Version is the current module version.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info describes the refcell build.
type Info struct {
	// Version is the version string without the "v" prefix.
	Version string

	// Semver is the canonical semantic version ("v0.1.0"), or "" if Version
	// is not valid semver.
	Semver string

	// Major is the semver major prefix ("v0").
	Major string

	// Model names the borrow-state machine.
	Model string
}

// GetInfo returns information about this build.
//
// Example:
//
//	info := refcell.GetInfo()
//	fmt.Printf("refcell %s (%s)\n", info.Semver, info.Model)
func GetInfo() Info {
	v := "v" + Version
	return Info{
		Version: Version,
		Semver:  semver.Canonical(v),
		Major:   semver.Major(v),
		Model:   "Unshared | Shared(n) | Exclusive",
	}
}
