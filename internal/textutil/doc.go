// Package textutil turns user-supplied text into names that are safe to use
// as local file names and remote storage path segments.
package textutil
