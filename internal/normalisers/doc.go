// Package normalisers provides implementations of the Extractor interface
// for the document formats paperqa can read. Each extractor knows how to
// turn one file of a given extension into page records.
//
// Extractors are registered with the Registry at startup.
package normalisers
