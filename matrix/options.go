// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for sparse backends. This file
// defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//
// Notes:
//   - Duplicate policy governs equal coordinates INSIDE one batch passed to
//     AssignTuples/InsertTuples (or an ImportDescription).
//   - Conflict policy governs a batch coordinate that is ALREADY occupied in
//     the backend when InsertTuples merges. Overwrite matches InsertOrAssign.
//   - Both policies are applied in that order: the batch is compacted first,
//     then merged against existing contents.
package matrix

import "log/slog"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultDuplicatePolicy keeps the LAST tuple of a run of equal
	// coordinates (stable input order).
	DefaultDuplicatePolicy = LastWins

	// DefaultConflictPolicy overwrites existing entries on InsertTuples.
	DefaultConflictPolicy = Overwrite

	// DefaultDebugChecks enables slot bounds validation and stale iterator
	// detection.
	DefaultDebugChecks = true
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicNilResource       = "matrix: WithResource: resource must be non-nil"
	panicDuplicatePolicy   = "matrix: WithDuplicatePolicy: unknown policy"
	panicConflictPolicy    = "matrix: WithConflictPolicy: unknown policy"
	panicStaleIterator     = "matrix: iterator used after reallocation"
	panicSlotOutOfBuffer   = "matrix: diagonal slot exceeds buffer length"
	panicIteratorExhausted = "matrix: dereference of end iterator"
)

// DuplicatePolicy selects which tuple survives among equal coordinates in
// one batch.
type DuplicatePolicy uint8

const (
	// LastWins keeps the last occurrence in input order.
	LastWins DuplicatePolicy = iota
	// FirstWins keeps the first occurrence in input order.
	FirstWins
)

// String implements fmt.Stringer.
func (p DuplicatePolicy) String() string {
	switch p {
	case LastWins:
		return "last-wins"
	case FirstWins:
		return "first-wins"
	default:
		return "unknown"
	}
}

// ConflictPolicy selects what InsertTuples does with a coordinate that is
// already occupied.
type ConflictPolicy uint8

const (
	// Overwrite replaces the stored value.
	Overwrite ConflictPolicy = iota
	// KeepExisting leaves the stored value untouched.
	KeepExisting
)

// String implements fmt.Stringer.
func (p ConflictPolicy) String() string {
	switch p {
	case Overwrite:
		return "overwrite"
	case KeepExisting:
		return "keep-existing"
	default:
		return "unknown"
	}
}

// ---------- Public option type (functional) ----------

// Option mutates internal options. Safe to apply repeatedly (idempotent).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public constructors accept `...Option`.
type Options struct {
	duplicates  DuplicatePolicy
	conflicts   ConflictPolicy
	debugChecks bool
	resource    Resource // nil means "fresh HeapResource per backend"
	logger      *slog.Logger
}

// WithDuplicatePolicy sets the in-batch duplicate policy.
// Panics on values other than LastWins/FirstWins.
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	if p != LastWins && p != FirstWins {
		panic(panicDuplicatePolicy)
	}

	return func(o *Options) { o.duplicates = p }
}

// WithLastWins is shorthand for WithDuplicatePolicy(LastWins).
func WithLastWins() Option { return WithDuplicatePolicy(LastWins) }

// WithFirstWins is shorthand for WithDuplicatePolicy(FirstWins).
func WithFirstWins() Option { return WithDuplicatePolicy(FirstWins) }

// WithConflictPolicy sets how InsertTuples treats already-occupied
// coordinates.
// Panics on values other than Overwrite/KeepExisting.
func WithConflictPolicy(p ConflictPolicy) Option {
	if p != Overwrite && p != KeepExisting {
		panic(panicConflictPolicy)
	}

	return func(o *Options) { o.conflicts = p }
}

// WithOverwrite is shorthand for WithConflictPolicy(Overwrite).
func WithOverwrite() Option { return WithConflictPolicy(Overwrite) }

// WithKeepExisting is shorthand for WithConflictPolicy(KeepExisting).
func WithKeepExisting() Option { return WithConflictPolicy(KeepExisting) }

// WithDebugChecks enables slot bounds validation (DIA) and stale iterator
// detection (both backends). This is the default.
//
// AI-Hints:
//   - Keep enabled in tests; a violation panics with a stable message.
func WithDebugChecks() Option {
	return func(o *Options) { o.debugChecks = true }
}

// WithNoDebugChecks disables the programmer-error guards. Hot loops avoid a
// generation compare per Next/Ref.
func WithNoDebugChecks() Option {
	return func(o *Options) { o.debugChecks = false }
}

// WithResource threads an explicit memory resource through construction.
// Panics on nil (programmer error).
//
// Notes:
//   - Sharing one resource between backends makes them draw on one budget.
//   - The backend never falls back to an implicit global resource.
func WithResource(r Resource) Option {
	if r == nil {
		panic(panicNilResource)
	}

	return func(o *Options) { o.resource = r }
}

// WithLogger sends Debug records for reallocations, lazy diagonal
// allocation and refused reservations to l. A nil logger disables logging,
// which is the default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.logger = l }
}

// debug emits a Debug record when a logger is configured.
func (o *Options) debug(msg string, args ...any) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}

// refused records a failed reservation.
func (o *Options) refused(op string, bytes int64, err error) {
	o.debug("matrix: reservation refused", "op", op, "bytes", bytes, "in_use", o.resource.InUse(), "err", err)
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		duplicates:  DefaultDuplicatePolicy,
		conflicts:   DefaultConflictPolicy,
		debugChecks: DefaultDebugChecks,
	}
}

// gatherOptions applies opts over the defaults and resolves the resource.
// Complexity: O(len(opts)).
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	if o.resource == nil {
		o.resource = NewHeapResource()
	}

	return o
}
