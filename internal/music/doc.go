// Package music defines the domain model shared by the match pipeline:
// recommended recordings, marketplace releases, and catalog albums.
package music
