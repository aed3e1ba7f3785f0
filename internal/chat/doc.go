// Package chat runs question/answer exchanges for the active conversation.
//
// # Overview
//
// A Session sits between a conversation.Store and the answer backend. It
// appends the user's question immediately, asks the backend in the
// background, and appends the answer (or UnavailableText on failure) once it
// arrives. The conversation that was active at send time receives the
// answer, even if the user has switched away in the meantime.
//
// # In-flight gate
//
// Only one request runs at a time. Submit and Regenerate both return
// accepted=false while a request is outstanding; nothing is queued. Requests
// are never cancelled once issued.
//
// # Invalid calls
//
// Blank questions, feedback on user messages and regenerating without a
// prior question are rejected without changing state or returning an error.
//
// # Export
//
// FormatTranscript produces the plain-text transcript:
//
//	[USER] 10:00 AM: hi
//
//	[ASSISTANT] 10:00 AM: hello
//	Sources: faq
//
// ExportTranscript and ExportTranscriptHTML write it to <app>_Chat_<date>.
package chat
