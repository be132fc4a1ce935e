// Package programsqlite writes a conference program into a SQLite database
// file, one row per session.
//
// Register it on the runner explicitly:
//
//	_ = runner.Renderers.Register(program.FormatSQLite, programsqlite.Renderer{})
//
// The sessions table name is configurable per request through
// RenderOptions.SQLite.TableName and defaults to "sessions". A single-row
// "conference" table carries the cover details.
package programsqlite
