// Package namecache persists the application id -> display name mapping.
//
// An empty name is a negative entry: the id was looked up and the catalog had
// no name for it. That is distinct from an absent id, which has never been
// attempted. Every mutation is persisted before it returns.
//
// # Storage
//
// Two backends exist. The JSON backend (default) keeps a single object
// {"<id>": "<name>"} in memory and rewrites the whole file on each mutation,
// holding an flock on a sibling .lock file so two steamdrop processes never
// interleave writes. A missing or malformed file starts an empty cache. The
// SQLite backend stores one row per id and suits large libraries.
//
//	[name_cache]
//	backend = "json"
//	path = "~/.cache/steamdrop/name_cache.json"
package namecache
