// Package state loads and saves per-scope configs and merges them with the
// layering primitives of the configfile package.
//
// Responsibilities:
//   - Store only loads/saves a single config for a single Ref.
//   - Resolver loads configs for several scopes and merges them by building
//     configfile.Layer values and a configfile.Stack.
//   - The configfile package stays persistence-agnostic; storage lives behind
//     Store implementations such as MemoryStore and FileStore.
//
// Data flow:
//
//	Store -> Resolver -> configfile.NewStack(...).Merge(...) -> *configfile.Config
//
// Provenance:
//
//	Meta.SnapshotID becomes Layer.SnapshotID (via configfile.WithSnapshotID),
//	which Stack.Trace reports and layer-applied activity events carry.
//
// Deterministic keys:
//
//	Ref.Identifier() provides the storage key for the system, site, host and
//	user scopes. FileStore maps it directly onto a relative path.
package state
