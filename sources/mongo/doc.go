// Package sourcemongo loads conference programs from MongoDB collections.
//
// Documents use the camelCase field names of the conference site
// (startDate, conferenceId, venueHall, ...). Instants may be stored as BSON
// dates or ISO-8601 strings.
package sourcemongo
