package stats

import (
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/trace"
)

type TraceRecord struct {

	// ID is an idempotent identifier, typically assigned by the
	// upstream extraction stage (derived from window and process).
	ID string

	// Window identifies the time window the trace was observed in.
	Window string

	// Process is the process the trace belongs to.
	Process string

	// Tokens is the raw action sequence in its textual encoding
	// (comma-delimited with a leading delimiter).
	Tokens string

	// Length is the raw sequence length as reported by the
	// extraction stage.
	Length int

	// CompactedTokens is the latest compacted version of Tokens
	// (empty until a compaction run stores its output).
	CompactedTokens string

	CompactedLength int

	// Label is the optional attack label. Unlabeled traces carry
	// trace.LabelUnknown.
	Label trace.Label

	// TrainingExclude excludes the record from downstream model
	// training, typically to keep a validation holdout.
	TrainingExclude bool
}

// AsTrace converts the database record back into the in-memory form.
func (rec TraceRecord) AsTrace() trace.Trace {
	ans := trace.Trace{
		ID:      rec.ID,
		Window:  rec.Window,
		Process: rec.Process,
		Tokens:  trace.ParseEncoded(rec.Tokens),
		Length:  rec.Length,
		Label:   rec.Label,
	}
	if rec.CompactedTokens != "" {
		ans.Compacted = trace.ParseEncoded(rec.CompactedTokens)
		ans.CompactedLength = rec.CompactedLength
	}
	return ans
}

// NewTraceRecord converts an in-memory trace into its database form.
func NewTraceRecord(tr trace.Trace) TraceRecord {
	ans := TraceRecord{
		ID:      tr.ID,
		Window:  tr.Window,
		Process: tr.Process,
		Tokens:  trace.Encode(tr.Tokens),
		Length:  tr.Length,
		Label:   tr.Label,
	}
	if tr.Compacted != nil {
		ans.CompactedTokens = trace.Encode(tr.Compacted)
		ans.CompactedLength = tr.CompactedLength
	}
	return ans
}
