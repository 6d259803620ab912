package member

import (
	"context"
	"database/sql"
	"errors"

	"aecofarm-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(q db.DBTX) *Store { return &Store{db: q} }

const memberColumns = `member_id, login_id, password_hash, nickname, recent, created_at`

// GetByID: 見つからなければ (nil, nil)
func (s *Store) GetByID(ctx context.Context, id int64) (*Member, error) {
	var m Member
	err := s.db.GetContext(ctx, &m, `SELECT `+memberColumns+` FROM members WHERE member_id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) GetByLoginID(ctx context.Context, loginID string) (*Member, error) {
	var m Member
	err := s.db.GetContext(ctx, &m, `SELECT `+memberColumns+` FROM members WHERE login_id = ? LIMIT 1`, loginID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) Insert(ctx context.Context, m *Member) error {
	const q = `
	INSERT INTO members (login_id, password_hash, nickname, recent, created_at)
	VALUES (?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, m.LoginID, m.PasswordHash, m.Nickname, m.Recent, m.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.MemberID = id
	return nil
}

func (s *Store) UpdateRecent(ctx context.Context, id int64, recent string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE members SET recent = ? WHERE member_id = ?`, recent, id)
	return err
}
