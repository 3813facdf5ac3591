// Package sitecontacts extracts business contact information (emails,
// phone numbers, inferred country) from lists of company websites and runs
// those lists as a resumable, chunked batch.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, sqlite/).
package sitecontacts
