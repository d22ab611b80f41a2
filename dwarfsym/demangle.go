// Copyright 2022 Ian Lance Taylor. Adapted under the BSD-style license
// used throughout this module.

package dwarfsym

import "github.com/ianlancetaylor/demangle"

// demangleName applies Itanium C++ ABI demangling rules to name, as
// spec.md §4.5.6 requires. Names that are not mangled (don't start with
// "_Z" or an equivalent recognized prefix) pass through unchanged. When
// includeTemplates is false, angle-bracketed template arguments are
// elided from the result.
func demangleName(name string, includeTemplates bool) string {
	if name == "" {
		return name
	}
	var opts []demangle.Option
	if !includeTemplates {
		opts = append(opts, demangle.NoTemplateParams)
	}
	out := demangle.Filter(name, opts...)
	return out
}
