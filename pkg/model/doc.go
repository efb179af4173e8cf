// Package model describes the base objects manipulated by the sync commands.
//
// The object model is composed of:
//
//	DatasetRequest:
//	  What the user asked for: a dataset kind, a use case, a range of
//	  forecast cycles and the knobs that shape a run (snippet, forecast hour).
//
//	ForecastCycle:
//	  One model initialization time. Cycles are spaced 24 hours apart and
//	  identified by their date and hour of day.
//
//	RemoteObject:
//	  One object, or one listed family of objects, to mirror from the
//	  remote bucket into the destination tree.
//
//	SyncResult:
//	  The aggregate outcome of one run: counts per terminal state, bytes
//	  moved, duration, and the failures with their reasons.
package model
