package borrow

import (
	"context"

	"aecofarm-backend/internal/platform/db"
)

type Store struct{ db db.DBTX }

func NewStore(q db.DBTX) *Store { return &Store{db: q} }

func (s *Store) Insert(ctx context.Context, r *Request) error {
	const q = `
	INSERT INTO borrow_requests (request_ulid, contract_id, requester_id, requested_at)
	VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, r.RequestULID, r.ContractID, r.RequesterID, r.RequestedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.RequestID = id
	return nil
}

func (s *Store) ListByContract(ctx context.Context, contractID int64) ([]Request, error) {
	const q = `
	SELECT request_id, request_ulid, contract_id, requester_id, requested_at
	FROM borrow_requests WHERE contract_id = ? ORDER BY request_id ASC`
	var out []Request
	if err := s.db.SelectContext(ctx, &out, q, contractID); err != nil {
		return nil, err
	}
	return out, nil
}
