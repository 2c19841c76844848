// Package sdkref renders the Pixeltable SDK reference: one MDX page per
// module or class listed in the public API outline, plus the navigation
// tab that links them.
package sdkref
