// Package spool defines the domain types shared by the pre-print checker:
// spool records as served by a Spoolman-compatible inventory, and the
// tool/slot mapping used in multi-tool mode.
//
// These types are plain data. Optional inventory fields are modeled so that
// "no opinion" is distinguishable from a present zero value: remaining weight
// is a pointer, and an empty (post-trim) name or material string means the
// inventory has no opinion on that field.
package spool
