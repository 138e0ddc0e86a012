// Package library owns the "library" message: a list of disciplines, each
// linked to the public share of its remote folder.
//
// ShareLinkCache maps disciplines to share URLs. It is loaded from the state
// store, refreshed lazily for disciplines without a link, and rebuilt by
// Sync at startup. The cache is not authoritative; a missing entry renders
// as "#" until the next refresh.
//
// Library renders the message and keeps one copy per group chat, deleting
// the previous copy whenever it reposts.
package library
