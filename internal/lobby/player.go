package lobby

// Player is one participant's identity and connection state within a lobby.
// Mutable fields are guarded by the owning lobby's mutex; identity fields
// are immutable after construction.
type Player struct {
	id    string
	name  string
	lobby *Lobby

	ready bool
	conn  Conn
	queue []any // pending payloads while no connection is attached
	timer *IdleTimer
}

// ID returns the player identifier.
func (p *Player) ID() string { return p.id }

// Name returns the display name.
func (p *Player) Name() string { return p.name }

// Ready reports whether the player has signalled readiness.
func (p *Player) Ready() bool {
	p.lobby.mu.Lock()
	defer p.lobby.mu.Unlock()
	return p.ready
}

// Connected reports whether a push connection is currently attached.
func (p *Player) Connected() bool {
	p.lobby.mu.Lock()
	defer p.lobby.mu.Unlock()
	return p.conn != nil
}

// sendLocked delivers or buffers one payload. While a connection is attached
// payloads flow through immediately; otherwise they queue in FIFO order for
// the next attach. Callers hold the lobby mutex.
func (p *Player) sendLocked(v any) {
	if p.conn != nil {
		p.conn.Send(v)
		return
	}
	p.queue = append(p.queue, v)
}

// attachLocked binds a connection, stops the eviction timer, and flushes the
// pending queue in original order. Callers hold the lobby mutex.
func (p *Player) attachLocked(conn Conn) {
	p.conn = conn
	p.timer.Stop()
	for _, v := range p.queue {
		conn.Send(v)
	}
	p.queue = nil
}

// detachLocked clears the connection if conn is still the attached one and
// restarts the eviction timer. Callers hold the lobby mutex.
func (p *Player) detachLocked(conn Conn) bool {
	if p.conn == nil || p.conn != conn {
		return false
	}
	p.conn = nil
	p.timer.Start()
	return true
}
