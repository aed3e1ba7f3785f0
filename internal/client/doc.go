// Package client is the HTTP client for the Swavik answer backend.
//
// # Overview
//
// The backend is a small JSON service that answers HR questions from an
// indexed document set and manages the documents behind that index. This
// package wraps every endpoint the portal consumes:
//
//   - POST /chat: ask a question, receive an answer with source citations
//   - GET /stats: dashboard counters and weekly query volume
//   - GET /files: list indexed documents
//   - POST /upload: add a CSV document (multipart field "file")
//   - DELETE /files/{name}: remove a document
//   - GET /: health check
//
// # Errors
//
// Non-2xx responses are returned as *StatusError. When the backend sends a
// {"detail": "..."} body, Detail carries it:
//
//	var se *client.StatusError
//	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
//		// file already gone
//	}
//
// Requests are never retried. A zero timeout leaves the request bounded only
// by its context and the transport.
//
// # Usage
//
//	c := client.New("http://127.0.0.1:8000", client.WithToken(token))
//	resp, err := c.Chat(ctx, "How many leave days do I get?")
package client
