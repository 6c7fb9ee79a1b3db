// Package store provides whole-collection snapshot backends for the record
// stores. A backend never sees individual mutations: every Save receives the
// complete collection and replaces whatever was written before.
package store

// Kind names used for SQLite tables and file names.
const (
	KindCommands = "commands"
	KindContexts = "contexts"
)
