// Package publish deposits a finished session on the remote store.
//
// Files land in {root}/{discipline}/{date}/{lesson type} under collision-free
// names. Generated PDFs also get a dated copy in the discipline archive
// folder, and public shares are ensured for both folders. Every file is
// published independently; failures are collected on the Report and the
// remaining files still go out.
package publish
