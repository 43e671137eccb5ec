package pagesort

import "fmt"

// Version constants
const (
	// Major is the major version number
	Major = 0

	// Minor is the minor version number
	Minor = 1

	// Patch is the patch version number
	Patch = 0
)

// Version returns the version string of pagesort.
func Version() string {
	return fmt.Sprintf("pagesort %d.%d.%d (external merge sort over fixed-size pages)", Major, Minor, Patch)
}
