// Package embedify extracts Open Graph preview metadata from web pages.
// It fetches a page, scans its og: meta tags and synthesizes any missing
// mandatory attributes (title, type, image, url) from the document itself.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., http/, goquery/, rod/).
package embedify
