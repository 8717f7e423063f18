// Package docindex builds, loads, validates and compares the client-side
// search payload (searchindex.js) that documentation site generators ship
// alongside their static HTML.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, gomarkdown/).
package docindex
