// Copyright 2026 The Jem Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The variant registry computes some type defaults at lookup time
// ("today" for date, "now" for datetime). Those suppliers read the
// time through a Clock instead of calling time.Now directly, so tests
// can pin the result:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	registry := variant.NewBuiltin(c)
//	value, _ := registry.DefaultFor(variant.TypeDate) // 2026-01-01
//
// Production code uses Real().
package clock
