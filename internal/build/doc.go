// Package build assembles the Mintlify site in docs/target.
//
// A build is a fixed list of named stages run in order by a small pipeline
// that times each stage, classifies its error as fatal or warning and
// reports results to a metrics.Recorder. Warnings are collected in the
// Report and the build continues; the first fatal error stops it.
package build
