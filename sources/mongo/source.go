package sourcemongo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-program/program"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collections names the document collections.
type Collections struct {
	Conferences string
	Programs    string
	Sessions    string
}

// DefaultCollections returns the collection names the conference site uses.
func DefaultCollections() Collections {
	return Collections{Conferences: "conferences", Programs: "programs", Sessions: "sessions"}
}

// Source loads programs from MongoDB.
type Source struct {
	Database    *mongo.Database
	Collections Collections
}

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// NewSource creates a source for the named database.
func NewSource(client *mongo.Client, database string) *Source {
	return &Source{Database: client.Database(database), Collections: DefaultCollections()}
}

// Load returns the selected conference, its published program and the
// published sessions ordered by day and start time.
func (s *Source) Load(ctx context.Context, query program.SourceQuery) (program.Bundle, error) {
	if s == nil || s.Database == nil {
		return program.Bundle{}, program.NewError(program.KindNotImpl, "source database not configured", nil)
	}
	names := s.collections()

	var confDoc bson.M
	err := s.Database.Collection(names.Conferences).
		FindOne(ctx, conferenceFilter(query), options.FindOne().SetSort(bson.D{{Key: "startDate", Value: -1}})).
		Decode(&confDoc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return program.Bundle{}, program.NewError(program.KindNotFound, "conference not found", nil)
		}
		return program.Bundle{}, err
	}
	conf := conferenceFromDoc(confDoc)

	var progDoc bson.M
	err = s.Database.Collection(names.Programs).FindOne(ctx, programFilter(conf.ID)).Decode(&progDoc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return program.Bundle{}, program.NewError(program.KindNotFound, fmt.Sprintf("no published program for conference %q", conf.ID), nil)
		}
		return program.Bundle{}, err
	}
	prog := programFromDoc(progDoc)

	cursor, err := s.Database.Collection(names.Sessions).Find(ctx, sessionFilter(prog.ID),
		options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "startTime", Value: 1}}))
	if err != nil {
		return program.Bundle{}, err
	}
	defer cursor.Close(ctx)

	sessions := make([]program.Session, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return program.Bundle{}, err
		}
		sessions = append(sessions, sessionFromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return program.Bundle{}, err
	}
	program.SortSessions(sessions)

	return program.Bundle{Conference: &conf, Program: &prog, Sessions: sessions}, nil
}

func (s *Source) collections() Collections {
	names := s.Collections
	defaults := DefaultCollections()
	if names.Conferences == "" {
		names.Conferences = defaults.Conferences
	}
	if names.Programs == "" {
		names.Programs = defaults.Programs
	}
	if names.Sessions == "" {
		names.Sessions = defaults.Sessions
	}
	return names
}

func conferenceFilter(query program.SourceQuery) bson.D {
	if id := strings.TrimSpace(query.ConferenceID); id != "" {
		return bson.D{{Key: "$or", Value: bson.A{idMatch("_id", id), bson.D{{Key: "id", Value: id}}}}}
	}
	return bson.D{{Key: "isActive", Value: true}}
}

func programFilter(conferenceID string) bson.D {
	return bson.D{
		{Key: "conferenceId", Value: conferenceID},
		{Key: "status", Value: program.StatusPublished},
	}
}

func sessionFilter(programID string) bson.D {
	return bson.D{
		{Key: "programId", Value: programID},
		{Key: "status", Value: program.StatusPublished},
	}
}

// idMatch matches _id stored either as an ObjectID or as a plain string.
func idMatch(field, id string) bson.D {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: bson.A{oid, id}}}}}
	}
	return bson.D{{Key: field, Value: id}}
}

func conferenceFromDoc(doc bson.M) program.Conference {
	return program.Conference{
		ID:        docID(doc),
		Title:     stringField(doc, "title"),
		StartDate: timeField(doc, "startDate"),
		EndDate:   timeField(doc, "endDate"),
		Location:  stringField(doc, "location"),
		Venue:     stringField(doc, "venue"),
		IsActive:  boolField(doc, "isActive"),
	}
}

func programFromDoc(doc bson.M) program.Program {
	return program.Program{
		ID:           docID(doc),
		ConferenceID: stringField(doc, "conferenceId"),
		Title:        stringField(doc, "title"),
		Status:       stringField(doc, "status"),
		DaysCount:    intField(doc, "daysCount"),
		VenueHalls:   stringsField(doc, "venueHalls"),
	}
}

func sessionFromDoc(doc bson.M) program.Session {
	return program.Session{
		ID:        docID(doc),
		ProgramID: stringField(doc, "programId"),
		Day:       intField(doc, "day"),
		StartTime: timeField(doc, "startTime"),
		ToTime:    timeField(doc, "toTime"),
		VenueHall: stringField(doc, "venueHall"),
		Theme:     stringField(doc, "theme"),
		Title:     stringField(doc, "title"),
		Organizer: stringField(doc, "organizer"),
		Preamble:  stringField(doc, "preamble"),
		Speakers:  stringField(doc, "speakers"),
		Status:    stringField(doc, "status"),
	}
}

func docID(doc bson.M) string {
	switch v := doc["_id"].(type) {
	case bson.ObjectID:
		return v.Hex()
	case string:
		return v
	}
	return stringField(doc, "id")
}

func stringField(doc bson.M, key string) string {
	switch v := doc[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func boolField(doc bson.M, key string) bool {
	switch v := doc[key].(type) {
	case bool:
		return v
	case string:
		parsed, _ := strconv.ParseBool(v)
		return parsed
	}
	return false
}

func intField(doc bson.M, key string) int {
	switch v := doc[key].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		if v == math.Trunc(v) {
			return int(v)
		}
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return parsed
		}
	}
	return 0
}

func stringsField(doc bson.M, key string) []string {
	values, ok := doc[key].(bson.A)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if s, ok := value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// timeField accepts BSON dates and ISO-8601 strings.
func timeField(doc bson.M, key string) time.Time {
	switch v := doc[key].(type) {
	case bson.DateTime:
		return v.Time().UTC()
	case time.Time:
		return v
	case string:
		parsed, _ := program.ParseInstant(v)
		return parsed
	}
	return time.Time{}
}
