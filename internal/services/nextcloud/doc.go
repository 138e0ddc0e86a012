// Package nextcloud talks to a Nextcloud server: WebDAV for folders and
// files, and the OCS files_sharing API for public links.
//
// Paths are slash-separated and relative to the user's WebDAV root
// ({url}/remote.php/dav/files/{user}). EnsureFolder is idempotent; an
// existing folder is not an error. EnsureShare reuses a public link the
// server already reports for the path before creating a new one.
//
// The WebDAV library has no context support, so Client checks ctx between
// requests and relies on the HTTP client timeout for each request.
package nextcloud
