package cart

import (
	"slices"
	"sync"
	"time"

	"github.com/emberhall/commerce/internal/domain/catalog"
)

// Session is the explicit per-client cart state: the lines the client sees
// and their derived totals. A session with an empty owner ID belongs to a
// guest and is never synced to the store. Sessions are created on session
// start and torn down on sign-out or idle eviction.
type Session struct {
	mu       sync.Mutex
	ownerID  string
	lines    []Line
	summary  Summary
	lastSeen time.Time
}

// NewSession creates an empty session for the given owner. An empty ownerID
// denotes a guest session.
func NewSession(ownerID string) *Session {
	return &Session{ownerID: ownerID, lastSeen: time.Now()}
}

// touch records session activity for idle eviction.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = now
}

// lastSeenAt returns the time of the last touch.
func (s *Session) lastSeenAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// OwnerID returns the owner this session belongs to, empty for guests.
func (s *Session) OwnerID() string {
	return s.ownerID
}

// Guest reports whether the session has no owner identity.
func (s *Session) Guest() bool {
	return s.ownerID == ""
}

// Lines returns a copy of the current session lines.
func (s *Session) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

// Summary returns the totals as of the last mutation.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// replaceAll swaps local state wholesale and recomputes totals.
func (s *Session) replaceAll(lines []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = lines
	s.summary = Summarize(s.lines)
}

// upsertLocal merges a line into local state: quantities accumulate for an
// existing (item, type) pair, otherwise the line is appended. It returns the
// resulting line.
func (s *Session) upsertLocal(line Line) Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ItemID == line.ItemID && s.lines[i].ItemType == line.ItemType {
			s.lines[i].Quantity += line.Quantity
			s.summary = Summarize(s.lines)
			return s.lines[i]
		}
	}
	s.lines = append(s.lines, line)
	s.summary = Summarize(s.lines)
	return line
}

// setLine replaces the stored copy of a line (matched by item identity) with
// the authoritative row returned by the store.
func (s *Session) setLine(line Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ItemID == line.ItemID && s.lines[i].ItemType == line.ItemType {
			s.lines[i] = line
			s.summary = Summarize(s.lines)
			return
		}
	}
	s.lines = append(s.lines, line)
	s.summary = Summarize(s.lines)
}

// setQuantityLocal sets a line's quantity by line ID. It returns the updated
// line, or false when the line is not present.
func (s *Session) setQuantityLocal(lineID string, quantity int) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			s.lines[i].Quantity = quantity
			s.summary = Summarize(s.lines)
			return s.lines[i], true
		}
	}
	return Line{}, false
}

// removeLocal drops a line by ID. Removing an absent line is a no-op.
func (s *Session) removeLocal(lineID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = slices.DeleteFunc(s.lines, func(l Line) bool { return l.ID == lineID })
	s.summary = Summarize(s.lines)
}

// findLocal looks up a line by ID.
func (s *Session) findLocal(lineID string) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return Line{}, false
}

// findByItem looks up a line by catalog identity.
func (s *Session) findByItem(itemID string, itemType catalog.ItemType) (Line, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.lines {
		if l.ItemID == itemID && l.ItemType == itemType {
			return l, true
		}
	}
	return Line{}, false
}
