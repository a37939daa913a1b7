// Package store persists users, boards, board members and document
// snapshots.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type Board struct {
	ID        string
	Name      string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a board membership joined with the member's user row.
type Member struct {
	BoardID     string
	UserID      string
	Role        Role
	DisplayName string
	Email       string
}

// Snapshot is one saved version of a board document. ListSnapshots leaves
// Document empty.
type Snapshot struct {
	ID        string
	BoardID   string
	Version   int32
	Document  []byte
	CreatedAt time.Time
}

type Store interface {
	CreateUser(ctx context.Context, u User) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id string) (User, error)

	CreateBoard(ctx context.Context, b Board) (Board, error)
	GetBoard(ctx context.Context, id string) (Board, error)
	// ListBoards returns the boards userID is a member of, newest first.
	ListBoards(ctx context.Context, userID string) ([]Board, error)
	RenameBoard(ctx context.Context, id, name string) (Board, error)
	DeleteBoard(ctx context.Context, id string) error

	AddMember(ctx context.Context, boardID, userID string, role Role) error
	GetMember(ctx context.Context, boardID, userID string) (Member, error)
	ListMembers(ctx context.Context, boardID string) ([]Member, error)
	RemoveMember(ctx context.Context, boardID, userID string) error

	CreateSnapshot(ctx context.Context, s Snapshot) (Snapshot, error)
	LatestSnapshot(ctx context.Context, boardID string) (Snapshot, error)
	// ListSnapshots returns snapshot metadata, newest first.
	ListSnapshots(ctx context.Context, boardID string, limit int) ([]Snapshot, error)
}
