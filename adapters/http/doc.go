// Package programhttp serves conference program downloads through
// go-router.
//
//	GET {base}/download                      active conference
//	GET {base}/:conferenceID/download        selected conference
//	GET {base}/artifacts                     stored documents
//	GET {base}/artifacts/:id/:filename       one stored document
//
// Download accepts format, day, hall, tz, indent, table and store query
// parameters.
package programhttp
