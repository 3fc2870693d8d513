// Package formats provides parsers for the level documents the explorer
// loads. Levels are YAML: a list of rooms plus a player spawn.
package formats
