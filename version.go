package jsonmend

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var rawVersion string

// Version is the release of the repair engine, as recorded in version.txt.
// cmd/jsonmend sets it as the cobra root's Version, so `jsonmend --version`
// prints it.
var Version = strings.TrimSpace(rawVersion)
