// Package artifact handles build artifact naming, collection, archiving,
// and checksums.
//
// Artifact contents are opaque: only file names and glob patterns are
// interpreted, never what is inside the files.
package artifact

import (
	"fmt"
	"runtime"
)

// archExceptions maps Go architecture names onto the wheel-style
// platform vocabulary used in package file names.
var archExceptions = map[string]string{
	"amd64": "x86_64",
	"arm64": "aarch64",
	"386":   "i686",
}

// PlatformTag returns the platform identifier for the current host in
// the {os}_{arch} form used by package file names, e.g. linux_x86_64 or
// darwin_aarch64.
func PlatformTag() string {
	return platformTag(runtime.GOOS, runtime.GOARCH)
}

func platformTag(goos, goarch string) string {
	arch := goarch
	if mapped, ok := archExceptions[goarch]; ok {
		arch = mapped
	}
	return goos + "_" + arch
}

// PackageFileName returns the canonical package artifact file name:
// {name}-{version}-{platform}.tar.zst.
func PackageFileName(name, version, platform string) string {
	return fmt.Sprintf("%s-%s-%s.tar.zst", name, version, platform)
}
