package borrow

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"aecofarm-backend/internal/contract"
	"aecofarm-backend/internal/member"
	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/db"
	"aecofarm-backend/internal/platform/requestid"
)

const (
	msgInvalidContract = "유효한 계약 ID가 아닙니다."
	msgNoListPerm      = "조회 권한이 없습니다."
)

// Requester: POST /borrow/reqeust/:contractId の処理
type Requester interface {
	RequestBorrow(ctx context.Context, contractID, requesterID int64) (RequestResponse, error)
}

// RequestLister: 契約の作成者が届いたリクエストを見る
type RequestLister interface {
	ListRequests(ctx context.Context, contractID, memberID int64) ([]RequestResponse, error)
}

// API はハンドラが使う操作一式
type API interface {
	Requester
	RequestLister
}

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Service はリクエストを記録するだけ。承認フローが決まるまで契約の status と役割カラムは触らない
type Service struct {
	db    *sqlx.DB
	clock Clock
}

var _ API = (*Service)(nil)

func NewService(conn *sqlx.DB) *Service {
	return &Service{db: conn, clock: realClock{}}
}

func (s *Service) RequestBorrow(ctx context.Context, contractID, requesterID int64) (RequestResponse, error) {
	now := s.clock.Now()
	r := &Request{
		RequestULID: requestid.New(now),
		ContractID:  contractID,
		RequesterID: requesterID,
		RequestedAt: now,
	}

	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		c, err := contract.NewStore(tx).GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound(msgInvalidContract)
		}
		m, err := member.NewStore(tx).GetByID(ctx, requesterID)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.ErrInvalidUser(member.MsgInvalidUser)
		}
		return NewStore(tx).Insert(ctx, r)
	})
	if err != nil {
		return RequestResponse{}, err
	}

	log.Printf("[INFO] borrow requested: request=%s contract_id=%d member_id=%d", r.RequestULID, contractID, requesterID)
	return toResponse(*r), nil
}

// ListRequests: 契約 → 会員 → 権限（契約の作成者のみ）の順にチェックし、古い順で返す
func (s *Service) ListRequests(ctx context.Context, contractID, memberID int64) ([]RequestResponse, error) {
	var out []RequestResponse
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		c, err := contract.NewStore(tx).GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound(msgInvalidContract)
		}
		m, err := member.NewStore(tx).GetByID(ctx, memberID)
		if err != nil {
			return err
		}
		if m == nil {
			return apperr.ErrInvalidUser(member.MsgInvalidUser)
		}
		if !c.OwnedBy(memberID) {
			return apperr.ErrForbidden(msgNoListPerm)
		}

		reqs, err := NewStore(tx).ListByContract(ctx, contractID)
		if err != nil {
			return err
		}
		out = make([]RequestResponse, 0, len(reqs))
		for _, r := range reqs {
			out = append(out, toResponse(r))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func toResponse(r Request) RequestResponse {
	return RequestResponse{
		RequestID:   r.RequestULID,
		ContractID:  r.ContractID,
		RequesterID: r.RequesterID,
		RequestedAt: r.RequestedAt,
	}
}
