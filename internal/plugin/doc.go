// Package plugin discovers mini-app bundles, builds their handlers from a
// compile-time factory table and initializes them in order.
//
// A bundle is a directory holding manifest.json plus the asset files it
// names. The manifest's implementation key selects a Factory registered by a
// plugin package's init function:
//
//	func init() { plugin.Register("kanban", New) }
//
// Registry.LoadAll returns the plugins whose Initialize succeeded; the
// command router offers every command line to each of them before the
// built-in verbs.
package plugin
