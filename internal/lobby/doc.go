// Package lobby implements the session and player lifecycle engine.
//
// A Registry owns a bounded set of lobbies. Each lobby owns an ordered set
// of players, enforces join and capacity rules, runs the ready-check that
// gates game start, and delivers push payloads to attached connections.
// Game rules live outside the engine and observe it through the Hooks
// interface, so the engine has no compile-time dependency on any game.
//
// Concurrency model: the registry map is guarded by the registry mutex and
// every lobby is its own exclusion domain. Engine operations take the lobby
// mutex for their whole read-then-write span, so compound steps such as the
// ready-check appear atomic. Hooks fire after the lobby mutex is released;
// hook implementations call back into exported lobby operations, which take
// the mutex themselves. Timer callbacks and asynchronous completions carry
// entity identifiers and re-resolve them through the registry at fire time,
// so a callback that outlives its entity is a no-op.
package lobby
