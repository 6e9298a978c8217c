// Package harvest detects record listings on arbitrary web pages and
// extracts structured records from them. Given an immutable snapshot of a
// page's DOM it clusters sibling nodes by structural signature, scores the
// clusters as candidate record containers, optionally consults a semantic
// validator, extracts named fields from the winning container's members,
// and filters the resulting records against constraints parsed from a
// free-text instruction.
//
// This package contains domain types, interfaces, and the pure extraction
// engine following Ben Johnson's Standard Package Layout. Implementations
// of the ports live in subdirectories named after their primary dependency
// (e.g., goquery/, gemini/, sqlite/).
package harvest
