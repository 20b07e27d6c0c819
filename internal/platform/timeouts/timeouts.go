// Package timeouts defines shared timeout constants used across the server.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// LobbyIdle is how long an empty lobby survives before eviction.
const LobbyIdle = 20 * time.Second

// PlayerGrace is how long a disconnected player survives before eviction.
const PlayerGrace = 5 * time.Second

// JishoRequest caps the time allowed for a single dictionary lookup.
const JishoRequest = 10 * time.Second

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
