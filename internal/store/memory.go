package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Memory is a Store kept in process memory. It backs tests and the
// STORE=memory mode; nothing survives a restart.
type Memory struct {
	mu        sync.RWMutex
	users     map[string]User
	boards    map[string]Board
	members   map[string][]memberRow // board id -> members in join order
	snapshots map[string][]Snapshot  // board id -> snapshots by version
	now       func() time.Time
}

type memberRow struct {
	userID string
	role   Role
}

func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]User),
		boards:    make(map[string]Board),
		members:   make(map[string][]memberRow),
		snapshots: make(map[string][]Snapshot),
		now:       time.Now,
	}
}

func (m *Memory) CreateUser(_ context.Context, u User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return User{}, fmt.Errorf("%w: users_pkey", ErrDuplicate)
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return User{}, fmt.Errorf("%w: users_email_key", ErrDuplicate)
		}
	}
	u.CreatedAt = m.now()
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *Memory) UserByID(_ context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) CreateBoard(_ context.Context, b Board) (Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[b.ID]; ok {
		return Board{}, fmt.Errorf("%w: boards_pkey", ErrDuplicate)
	}
	if _, ok := m.users[b.OwnerID]; !ok {
		return Board{}, fmt.Errorf("owner %s: %w", b.OwnerID, ErrNotFound)
	}
	b.CreatedAt = m.now()
	b.UpdatedAt = b.CreatedAt
	m.boards[b.ID] = b
	return b, nil
}

func (m *Memory) GetBoard(_ context.Context, id string) (Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.boards[id]
	if !ok {
		return Board{}, ErrNotFound
	}
	return b, nil
}

func (m *Memory) ListBoards(_ context.Context, userID string) ([]Board, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Board
	for id, rows := range m.members {
		if slices.ContainsFunc(rows, func(r memberRow) bool { return r.userID == userID }) {
			out = append(out, m.boards[id])
		}
	}
	slices.SortFunc(out, func(a, b Board) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out, nil
}

func (m *Memory) RenameBoard(_ context.Context, id, name string) (Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[id]
	if !ok {
		return Board{}, ErrNotFound
	}
	b.Name = name
	b.UpdatedAt = m.now()
	m.boards[id] = b
	return b, nil
}

func (m *Memory) DeleteBoard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[id]; !ok {
		return ErrNotFound
	}
	delete(m.boards, id)
	delete(m.members, id)
	delete(m.snapshots, id)
	return nil
}

func (m *Memory) AddMember(_ context.Context, boardID, userID string, role Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[boardID]; !ok {
		return fmt.Errorf("board %s: %w", boardID, ErrNotFound)
	}
	if _, ok := m.users[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	rows := m.members[boardID]
	if slices.ContainsFunc(rows, func(r memberRow) bool { return r.userID == userID }) {
		return fmt.Errorf("%w: board_members_pkey", ErrDuplicate)
	}
	m.members[boardID] = append(rows, memberRow{userID: userID, role: role})
	return nil
}

func (m *Memory) member(boardID string, r memberRow) Member {
	u := m.users[r.userID]
	return Member{BoardID: boardID, UserID: r.userID, Role: r.role, DisplayName: u.DisplayName, Email: u.Email}
}

func (m *Memory) GetMember(_ context.Context, boardID, userID string) (Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.members[boardID] {
		if r.userID == userID {
			return m.member(boardID, r), nil
		}
	}
	return Member{}, ErrNotFound
}

func (m *Memory) ListMembers(_ context.Context, boardID string) ([]Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.members[boardID]
	out := make([]Member, len(rows))
	for i, r := range rows {
		out[i] = m.member(boardID, r)
	}
	return out, nil
}

func (m *Memory) RemoveMember(_ context.Context, boardID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.members[boardID]
	i := slices.IndexFunc(rows, func(r memberRow) bool { return r.userID == userID })
	if i < 0 {
		return ErrNotFound
	}
	m.members[boardID] = slices.Delete(rows, i, i+1)
	return nil
}

func (m *Memory) CreateSnapshot(_ context.Context, s Snapshot) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.boards[s.BoardID]
	if !ok {
		return Snapshot{}, fmt.Errorf("board %s: %w", s.BoardID, ErrNotFound)
	}
	snaps := m.snapshots[s.BoardID]
	if slices.ContainsFunc(snaps, func(x Snapshot) bool { return x.Version == s.Version }) {
		return Snapshot{}, fmt.Errorf("%w: snapshots_board_id_version_key", ErrDuplicate)
	}
	s.Document = slices.Clone(s.Document)
	s.CreatedAt = m.now()
	i, _ := slices.BinarySearchFunc(snaps, s.Version, func(x Snapshot, v int32) int { return int(x.Version - v) })
	m.snapshots[s.BoardID] = slices.Insert(snaps, i, s)
	b.UpdatedAt = s.CreatedAt
	m.boards[s.BoardID] = b
	return s, nil
}

func (m *Memory) LatestSnapshot(_ context.Context, boardID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snaps := m.snapshots[boardID]
	if len(snaps) == 0 {
		return Snapshot{}, ErrNotFound
	}
	s := snaps[len(snaps)-1]
	s.Document = slices.Clone(s.Document)
	return s, nil
}

func (m *Memory) ListSnapshots(_ context.Context, boardID string, limit int) ([]Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snaps := m.snapshots[boardID]
	if limit <= 0 {
		limit = len(snaps)
	}
	out := make([]Snapshot, 0, min(limit, len(snaps)))
	for i := len(snaps) - 1; i >= 0 && len(out) < limit; i-- {
		s := snaps[i]
		s.Document = nil
		out = append(out, s)
	}
	return out, nil
}
