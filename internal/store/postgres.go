package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// NewPool connects to databaseURL and checks the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Postgres is the Store backed by a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

const createUser = `-- name: CreateUser :one
INSERT INTO users (id, email, password, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password, display_name, created_at`

func (p *Postgres) CreateUser(ctx context.Context, u User) (User, error) {
	row := p.pool.QueryRow(ctx, createUser, u.ID, u.Email, u.Password, u.DisplayName)
	return scanUser(row)
}

const userByEmail = `-- name: UserByEmail :one
SELECT id, email, password, display_name, created_at FROM users WHERE email = $1`

func (p *Postgres) UserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(p.pool.QueryRow(ctx, userByEmail, email))
}

const userByID = `-- name: UserByID :one
SELECT id, email, password, display_name, created_at FROM users WHERE id = $1`

func (p *Postgres) UserByID(ctx context.Context, id string) (User, error) {
	return scanUser(p.pool.QueryRow(ctx, userByID, id))
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt); err != nil {
		return User{}, translate(err)
	}
	return u, nil
}

const createBoard = `-- name: CreateBoard :one
INSERT INTO boards (id, name, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, created_at, updated_at`

func (p *Postgres) CreateBoard(ctx context.Context, b Board) (Board, error) {
	return scanBoard(p.pool.QueryRow(ctx, createBoard, b.ID, b.Name, b.OwnerID))
}

const getBoard = `-- name: GetBoard :one
SELECT id, name, owner_id, created_at, updated_at FROM boards WHERE id = $1`

func (p *Postgres) GetBoard(ctx context.Context, id string) (Board, error) {
	return scanBoard(p.pool.QueryRow(ctx, getBoard, id))
}

const listBoards = `-- name: ListBoards :many
SELECT b.id, b.name, b.owner_id, b.created_at, b.updated_at
FROM boards b
JOIN board_members m ON m.board_id = b.id
WHERE m.user_id = $1
ORDER BY b.updated_at DESC`

func (p *Postgres) ListBoards(ctx context.Context, userID string) ([]Board, error) {
	rows, err := p.pool.Query(ctx, listBoards, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const renameBoard = `-- name: RenameBoard :one
UPDATE boards SET name = $2, updated_at = now() WHERE id = $1
RETURNING id, name, owner_id, created_at, updated_at`

func (p *Postgres) RenameBoard(ctx context.Context, id, name string) (Board, error) {
	return scanBoard(p.pool.QueryRow(ctx, renameBoard, id, name))
}

const deleteBoard = `-- name: DeleteBoard :exec
DELETE FROM boards WHERE id = $1`

func (p *Postgres) DeleteBoard(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, deleteBoard, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBoard(row pgx.Row) (Board, error) {
	var b Board
	if err := row.Scan(&b.ID, &b.Name, &b.OwnerID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return Board{}, translate(err)
	}
	return b, nil
}

const addMember = `-- name: AddMember :exec
INSERT INTO board_members (board_id, user_id, role) VALUES ($1, $2, $3)`

func (p *Postgres) AddMember(ctx context.Context, boardID, userID string, role Role) error {
	if _, err := p.pool.Exec(ctx, addMember, boardID, userID, string(role)); err != nil {
		return translate(err)
	}
	return nil
}

const getMember = `-- name: GetMember :one
SELECT m.board_id, m.user_id, m.role, u.display_name, u.email
FROM board_members m
JOIN users u ON u.id = m.user_id
WHERE m.board_id = $1 AND m.user_id = $2`

func (p *Postgres) GetMember(ctx context.Context, boardID, userID string) (Member, error) {
	return scanMember(p.pool.QueryRow(ctx, getMember, boardID, userID))
}

const listMembers = `-- name: ListMembers :many
SELECT m.board_id, m.user_id, m.role, u.display_name, u.email
FROM board_members m
JOIN users u ON u.id = m.user_id
WHERE m.board_id = $1
ORDER BY m.created_at`

func (p *Postgres) ListMembers(ctx context.Context, boardID string) ([]Member, error) {
	rows, err := p.pool.Query(ctx, listMembers, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const removeMember = `-- name: RemoveMember :exec
DELETE FROM board_members WHERE board_id = $1 AND user_id = $2`

func (p *Postgres) RemoveMember(ctx context.Context, boardID, userID string) error {
	tag, err := p.pool.Exec(ctx, removeMember, boardID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	var role string
	if err := row.Scan(&m.BoardID, &m.UserID, &role, &m.DisplayName, &m.Email); err != nil {
		return Member{}, translate(err)
	}
	m.Role = Role(role)
	return m, nil
}

const createSnapshot = `-- name: CreateSnapshot :one
INSERT INTO snapshots (id, board_id, version, document)
VALUES ($1, $2, $3, $4)
RETURNING id, board_id, version, document, created_at`

// CreateSnapshot stores a document version and bumps the board's
// updated_at in the same transaction.
func (p *Postgres) CreateSnapshot(ctx context.Context, s Snapshot) (Snapshot, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	defer tx.Rollback(ctx)

	var out Snapshot
	err = tx.QueryRow(ctx, createSnapshot, s.ID, s.BoardID, s.Version, s.Document).
		Scan(&out.ID, &out.BoardID, &out.Version, &out.Document, &out.CreatedAt)
	if err != nil {
		return Snapshot{}, translate(err)
	}
	if _, err := tx.Exec(ctx, `UPDATE boards SET updated_at = now() WHERE id = $1`, s.BoardID); err != nil {
		return Snapshot{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Snapshot{}, err
	}
	return out, nil
}

const latestSnapshot = `-- name: LatestSnapshot :one
SELECT id, board_id, version, document, created_at
FROM snapshots
WHERE board_id = $1
ORDER BY version DESC
LIMIT 1`

func (p *Postgres) LatestSnapshot(ctx context.Context, boardID string) (Snapshot, error) {
	var s Snapshot
	err := p.pool.QueryRow(ctx, latestSnapshot, boardID).
		Scan(&s.ID, &s.BoardID, &s.Version, &s.Document, &s.CreatedAt)
	if err != nil {
		return Snapshot{}, translate(err)
	}
	return s, nil
}

const listSnapshots = `-- name: ListSnapshots :many
SELECT id, board_id, version, created_at
FROM snapshots
WHERE board_id = $1
ORDER BY version DESC
LIMIT $2`

func (p *Postgres) ListSnapshots(ctx context.Context, boardID string, limit int) ([]Snapshot, error) {
	rows, err := p.pool.Query(ctx, listSnapshots, boardID, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Snapshot, error) {
		var s Snapshot
		err := row.Scan(&s.ID, &s.BoardID, &s.Version, &s.CreatedAt)
		return s, err
	})
}
