// Package logging is the logging sink shared by every hostbridge package.
//
// Messages go to a process-wide zap logger (no-op until SetLogger is called).
// Templates use "{}" placeholders rather than printf verbs so call sites can
// log values without caring about their types:
//
//	logging.Warnf("query on {} requires and disallows {:%08b}", owner, overlap)
package logging
