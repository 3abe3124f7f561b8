// Package suggestion flags prediction candidates that must never be shown.
//
// The filter is an existence.Filter over fingerprints of lower-cased words.
// It fails open: a missing or broken filter lets every suggestion through.
package suggestion
