// Package models contains the public data structures shared by the agent
// and the completion services it talks to. These types are intentionally
// small and decoupled from internal representations so that they can
// remain stable for external consumers.
//
// The main entry points are:
//
//   - Chat:      a conversation history consisting of ordered Messages.
//   - Message:   a single chat message with a Role and textual content.
//   - Arguments: caller supplied values and per-service execution Settings.
//   - Settings:  opaque execution settings paired with a resolved service.
//   - Capability: the contract used to filter services in a registry.
//
// Errors returned by the agent (ErrServiceNotFound, ErrNoReply,
// ErrUnsupportedMessageType) live here so that callers can match them
// with errors.Is without importing internal packages.
package models
