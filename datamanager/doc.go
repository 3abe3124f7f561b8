// Package datamanager opens a data set and hands each conversion component
// the sections it needs.
//
// Every failure carries a Status in the taxonomy of the data loader:
// DataMissing for an absent section, DataBroken for a malformed blob or
// section, MmapFailure when a data file cannot be mapped, and
// EngineVersionMismatch for data built for another engine. Use errors.As
// with *StatusError, or StatusOf, to branch on it.
package datamanager
