package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/inamate/whiteboard/internal/document"
	"github.com/inamate/inamate/whiteboard/internal/store"
	"github.com/inamate/inamate/whiteboard/internal/typeid"
)

var (
	ErrNotFound          = errors.New("board not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotMember         = errors.New("not a board member")
	ErrUserNotFound      = errors.New("user not found")
	ErrAlreadyMember     = errors.New("already a board member")
	ErrCannotRemoveOwner = errors.New("cannot remove board owner")
)

const defaultHistoryLimit = 50

type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

type Board struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

type SnapshotInfo struct {
	ID        string `json:"id"`
	Version   int32  `json:"version"`
	CreatedAt string `json:"createdAt"`
}

func toBoard(b store.Board) *Board {
	return &Board{
		ID:        b.ID,
		Name:      b.Name,
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Create makes a board owned by ownerID and seeds it with an empty
// document as version 1.
func (s *Service) Create(ctx context.Context, name, ownerID string) (*Board, error) {
	b, err := s.store.CreateBoard(ctx, store.Board{
		ID:      typeid.NewBoardID(),
		Name:    name,
		OwnerID: ownerID,
	})
	if err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}

	if err := s.store.AddMember(ctx, b.ID, ownerID, store.RoleOwner); err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	docJSON, err := json.Marshal(document.NewEmptyDocument())
	if err != nil {
		return nil, fmt.Errorf("marshal empty document: %w", err)
	}
	_, err = s.store.CreateSnapshot(ctx, store.Snapshot{
		ID:       typeid.NewSnapshotID(),
		BoardID:  b.ID,
		Version:  1,
		Document: docJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toBoard(b), nil
}

func (s *Service) Get(ctx context.Context, boardID, userID string) (*Board, error) {
	if err := s.CheckMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}
	b, err := s.getBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	return toBoard(b), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Board, error) {
	rows, err := s.store.ListBoards(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	boards := make([]Board, len(rows))
	for i, b := range rows {
		boards[i] = *toBoard(b)
	}
	return boards, nil
}

// Rename is open to every member.
func (s *Service) Rename(ctx context.Context, boardID, userID, name string) (*Board, error) {
	if err := s.CheckMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}
	b, err := s.store.RenameBoard(ctx, boardID, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("rename board: %w", err)
	}
	return toBoard(b), nil
}

func (s *Service) Delete(ctx context.Context, boardID, userID string) error {
	if _, err := s.ownedBoard(ctx, boardID, userID); err != nil {
		return err
	}
	return s.store.DeleteBoard(ctx, boardID)
}

func (s *Service) Invite(ctx context.Context, boardID, ownerID, inviteeEmail string) error {
	if _, err := s.ownedBoard(ctx, boardID, ownerID); err != nil {
		return err
	}

	invitee, err := s.store.UserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	err = s.store.AddMember(ctx, boardID, invitee.ID, store.RoleEditor)
	if errors.Is(err, store.ErrDuplicate) {
		return ErrAlreadyMember
	}
	return err
}

func (s *Service) ListMembers(ctx context.Context, boardID, userID string) ([]Member, error) {
	if err := s.CheckMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}

	rows, err := s.store.ListMembers(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	members := make([]Member, len(rows))
	for i, m := range rows {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, boardID, ownerID, targetUserID string) error {
	if _, err := s.ownedBoard(ctx, boardID, ownerID); err != nil {
		return err
	}
	if targetUserID == ownerID {
		return ErrCannotRemoveOwner
	}
	err := s.store.RemoveMember(ctx, boardID, targetUserID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotMember
	}
	return err
}

// LatestSnapshot returns the newest stored document JSON for a member.
func (s *Service) LatestSnapshot(ctx context.Context, boardID, userID string) (json.RawMessage, error) {
	if err := s.CheckMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}
	snap, err := s.store.LatestSnapshot(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Document, nil
}

// History lists stored versions, newest first.
func (s *Service) History(ctx context.Context, boardID, userID string, limit int) ([]SnapshotInfo, error) {
	if err := s.CheckMembership(ctx, boardID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.store.ListSnapshots(ctx, boardID, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := make([]SnapshotInfo, len(rows))
	for i, r := range rows {
		out[i] = SnapshotInfo{ID: r.ID, Version: r.Version, CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339)}
	}
	return out, nil
}

// LoadDocument decodes the newest stored document. It does no access
// checks; the collaboration hub calls it for rooms it already admitted.
func (s *Service) LoadDocument(ctx context.Context, boardID string) (*document.Document, error) {
	snap, err := s.store.LatestSnapshot(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	var doc document.Document
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", snap.ID, err)
	}
	return &doc, nil
}

// SaveDocument stores doc as the next version. A concurrent save that
// takes the same version number is retried once.
func (s *Service) SaveDocument(ctx context.Context, boardID string, doc *document.Document) (int32, error) {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}

	for attempt := 0; ; attempt++ {
		next := int32(1)
		if cur, err := s.store.LatestSnapshot(ctx, boardID); err == nil {
			next = cur.Version + 1
		} else if !errors.Is(err, store.ErrNotFound) {
			return 0, fmt.Errorf("get snapshot: %w", err)
		}

		_, err := s.store.CreateSnapshot(ctx, store.Snapshot{
			ID:       typeid.NewSnapshotID(),
			BoardID:  boardID,
			Version:  next,
			Document: docJSON,
		})
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, store.ErrDuplicate) || attempt > 0 {
			return 0, fmt.Errorf("create snapshot: %w", err)
		}
	}
}

// CheckMembership returns ErrNotMember unless userID belongs to the board.
func (s *Service) CheckMembership(ctx context.Context, boardID, userID string) error {
	if _, err := s.store.GetMember(ctx, boardID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func (s *Service) getBoard(ctx context.Context, boardID string) (store.Board, error) {
	b, err := s.store.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Board{}, ErrNotFound
		}
		return store.Board{}, fmt.Errorf("get board: %w", err)
	}
	return b, nil
}

func (s *Service) ownedBoard(ctx context.Context, boardID, userID string) (store.Board, error) {
	b, err := s.getBoard(ctx, boardID)
	if err != nil {
		return store.Board{}, err
	}
	if b.OwnerID != userID {
		return store.Board{}, ErrForbidden
	}
	return b, nil
}
