// Package factory provides an extensible registry of object builders,
// selecting among them by key, by marker, or by constructor signature.
//
// Builders are plain constructor functions registered under a key. The
// first registration becomes the default. Creation picks a builder in
// order of preference:
//
//  1. an explicitly requested key
//  2. a marker: metadata attached at registration, matched by name or by
//     name and value
//  3. the first builder whose constructor accepts the supplied arguments
//  4. the default builder
//
// A missed key or marker is logged and falls through to the next
// mechanism.
//
//	f := factory.New()
//	f.Register("postgres", NewPostgresStore, factory.Marker("kind", "sql"))
//	f.Register("memory", NewMemoryStore)
//
//	store, err := f.Create(factory.WithKey("memory"))
//	store, err = f.Create(factory.WithMarkerValue("kind", "sql"))
//	store, err = f.Create(factory.WithArgs("dsn://..."))
package factory
