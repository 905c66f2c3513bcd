// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build version information for the jem
// binaries.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/phylame/jem/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Binaries built without ldflags (go install) fall back to the VCS
// stamp the Go toolchain embeds in the build info.
package version
