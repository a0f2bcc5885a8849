// Package dataset implements the data access and resilience layer of the
// Demand Pulse dashboard: a cached CSV loader that degrades to synthetic
// substitute data when a source file is absent, malformed or fails schema
// validation, plus the time-series assembler and summary aggregator that
// consume the loaded tables.
//
// The loader never fails. Every load returns a usable table together with
// provenance describing which branch produced it:
//
//	loader := dataset.NewLoader(registry, cfg.Data, logger)
//	result := loader.Load(ctx, config.DatasetCalendar)
//	// result.Frame is real or synthetic, never nil
//
// Cache entries are process-local and expire lazily after their
// descriptor's TTL; an explicit Clear empties all entries so the next
// access repeats the full read-validate-or-synthesize sequence.
package dataset
