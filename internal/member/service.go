package member

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/auth"
	"aecofarm-backend/internal/platform/db"
)

const MsgInvalidUser = "유효한 사용자 ID가 아닙니다."

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	db     *sqlx.DB
	store  *Store
	issuer *auth.Issuer
	clock  Clock
}

func NewService(conn *sqlx.DB, issuer *auth.Issuer) *Service {
	return &Service{db: conn, store: NewStore(conn), issuer: issuer, clock: realClock{}}
}

func (s *Service) Register(ctx context.Context, in RegisterRequest) (MemberResponse, error) {
	loginID := strings.TrimSpace(in.LoginID)
	if loginID == "" || in.Password == "" {
		return MemberResponse{}, apperr.ErrInvalid("loginId and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return MemberResponse{}, err
	}

	m := &Member{
		LoginID:      loginID,
		PasswordHash: string(hash),
		Nickname:     strings.TrimSpace(in.Nickname),
		CreatedAt:    s.clock.Now(),
	}
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		st := NewStore(tx)
		exists, err := st.GetByLoginID(ctx, loginID)
		if err != nil {
			return err
		}
		if exists != nil {
			return apperr.ErrConflict("loginId already exists")
		}
		return st.Insert(ctx, m)
	})
	if err != nil {
		return MemberResponse{}, err
	}

	log.Printf("[INFO] member registered: member_id=%d", m.MemberID)
	return toResponse(m), nil
}

func (s *Service) Login(ctx context.Context, in LoginRequest) (LoginResponse, error) {
	m, err := s.store.GetByLoginID(ctx, strings.TrimSpace(in.LoginID))
	if err != nil {
		return LoginResponse{}, err
	}
	if m == nil {
		return LoginResponse{}, apperr.ErrInvalidUser("authentication failed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(in.Password)); err != nil {
		return LoginResponse{}, apperr.ErrInvalidUser("authentication failed")
	}

	token, err := s.issuer.Issue(m.MemberID, m.LoginID)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{MemberID: m.MemberID, Token: token}, nil
}

func (s *Service) Me(ctx context.Context, memberID int64) (MemberResponse, error) {
	m, err := s.store.GetByID(ctx, memberID)
	if err != nil {
		return MemberResponse{}, err
	}
	if m == nil {
		return MemberResponse{}, apperr.ErrInvalidUser(MsgInvalidUser)
	}
	return toResponse(m), nil
}

// RecentContracts: 最近見た契約を新しい順で返す
func (s *Service) RecentContracts(ctx context.Context, memberID int64) (RecentResponse, error) {
	m, err := s.store.GetByID(ctx, memberID)
	if err != nil {
		return RecentResponse{}, err
	}
	if m == nil {
		return RecentResponse{}, apperr.ErrInvalidUser(MsgInvalidUser)
	}
	recent, err := m.RecentList()
	if err != nil {
		return RecentResponse{}, apperr.ErrSerialization("최근 본 물품을 읽는데 실패했습니다.", err)
	}
	return RecentResponse{ContractIDs: recent.Latest()}, nil
}
