// Package transcript parses raw chat export documents into normalized
// transcripts.
//
// Chat exporters use slightly different JSON shapes. The parser accepts
// three envelope forms (a single chat object, a {"data": [...]} wrapper,
// and a bare list of chats) and tolerant key aliases for turn fields
// (speaker/author, text/message, timestamp/turn_timestamp). A document
// missing a required turn field fails with core.ErrMalformedTranscript
// wrapped around the specific field error.
package transcript
