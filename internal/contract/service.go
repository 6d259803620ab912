package contract

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"aecofarm-backend/internal/member"
	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/db"
	"aecofarm-backend/internal/platform/jsoncol"
)

const (
	MsgCreated = "게시글 등록에 성공하였습니다."
	MsgUpdated = "게시글 수정에 성공하였습니다."
	MsgDeleted = "게시글 삭제에 성공하였습니다."

	msgInvalidContract  = "유효한 계약 ID가 아닙니다."
	msgDeletedContract  = "삭제된 게시글 입니다."
	msgNoUpdatePerm     = "수정 권한이 없습니다."
	msgNoDeletePerm     = "삭제 권한이 없습니다."
	msgInvalidCategory  = "category must be LEND or BORROW"
	msgEncodeHashFailed = "아이템 해시를 JSON으로 변환하는데 실패했습니다."
	msgDecodeHashFailed = "아이템 해시를 리스트로 변환하는데 실패했습니다."
	msgRecentFailed     = "최근 본 물품 업데이트 중 오류 발생"
)

// -------------- Clock --------------

type Clock interface{ Now() time.Time }
type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// -------------- Service --------------

type Service struct {
	db    *sqlx.DB
	store *Store
	clock Clock
}

func NewService(conn *sqlx.DB) *Service {
	return &Service{
		db:    conn,
		store: NewStore(conn),
		clock: realClock{},
	}
}

// POST /contracts
func (s *Service) CreateContract(ctx context.Context, in CreateContractRequest, memberID int64) (string, error) {
	var contractID int64
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if _, err := requireMember(ctx, tx, memberID); err != nil {
			return err
		}

		hash, err := jsoncol.EncodeStrings(in.ItemHash)
		if err != nil {
			return apperr.ErrSerialization(msgEncodeHashFailed, err)
		}

		category, ok := ParseCategory(in.Category)
		if !ok {
			return apperr.ErrInvalid(msgInvalidCategory)
		}

		now := s.clock.Now()
		st := NewStore(tx)

		it := &Item{
			ItemName:     in.ItemName,
			Price:        in.Price,
			ItemImage:    in.ItemImage,
			ItemContents: in.ItemContents,
			ItemPlace:    in.ItemPlace,
			ItemHash:     hash,
			Time:         in.Time,
			ContractTime: in.ContractTime,
			Kakao:        in.Kakao,
			Click:        0,
			CreatedAt:    now,
		}
		if err := st.InsertItem(ctx, it); err != nil {
			return err
		}

		c := &Contract{
			ItemID:   it.ItemID,
			Category: category,
			Status:   StatusNone,
			AskTime:  now,
		}
		c.assignCreator(memberID)
		if err := st.InsertContract(ctx, c); err != nil {
			return err
		}
		contractID = c.ContractID
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Printf("[INFO] contract created: contract_id=%d member_id=%d", contractID, memberID)
	return MsgCreated, nil
}

// PUT /contracts/:contractId
func (s *Service) UpdateContract(ctx context.Context, contractID int64, in CreateContractRequest, memberID int64) (string, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		st := NewStore(tx)
		c, err := s.authorize(ctx, tx, contractID, memberID, msgNoUpdatePerm)
		if err != nil {
			return err
		}

		hash, err := jsoncol.EncodeStrings(in.ItemHash)
		if err != nil {
			return apperr.ErrSerialization(msgEncodeHashFailed, err)
		}
		category, ok := ParseCategory(in.Category)
		if !ok {
			return apperr.ErrInvalid(msgInvalidCategory)
		}

		it, err := st.GetItem(ctx, c.ItemID)
		if err != nil {
			return err
		}
		if it == nil {
			return apperr.ErrInternal("item row missing for contract")
		}
		it.ItemName = in.ItemName
		it.Price = in.Price
		it.ItemImage = in.ItemImage
		it.ItemContents = in.ItemContents
		it.ItemPlace = in.ItemPlace
		it.ItemHash = hash
		it.Time = in.Time
		it.ContractTime = in.ContractTime
		it.Kakao = in.Kakao
		if err := st.UpdateItem(ctx, it); err != nil {
			return err
		}

		// 役割カラムは動かさず category だけ上書きする
		return st.UpdateCategory(ctx, c.ContractID, category)
	})
	if err != nil {
		return "", err
	}
	return MsgUpdated, nil
}

// DELETE /contracts/:contractId
func (s *Service) DeleteContract(ctx context.Context, contractID int64, memberID int64) (string, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		st := NewStore(tx)
		c, err := s.authorize(ctx, tx, contractID, memberID, msgNoDeletePerm)
		if err != nil {
			return err
		}
		// 先に契約、その後アイテム（FKの向き）
		if err := st.DeleteContract(ctx, c.ContractID); err != nil {
			return err
		}
		return st.DeleteItem(ctx, c.ItemID)
	})
	if err != nil {
		return "", err
	}

	log.Printf("[INFO] contract deleted: contract_id=%d member_id=%d", contractID, memberID)
	return MsgDeleted, nil
}

// GET /contracts/:contractId
// 閲覧のたびにクリック数と閲覧者の最近見た物品が更新される
func (s *Service) GetContractDetail(ctx context.Context, contractID int64, memberID int64) (ContractDetailResponse, error) {
	var out ContractDetailResponse
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		st := NewStore(tx)
		c, err := st.GetContract(ctx, contractID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound(msgDeletedContract)
		}
		it, err := st.GetItem(ctx, c.ItemID)
		if err != nil {
			return err
		}
		if it == nil {
			return apperr.ErrNotFound(msgDeletedContract)
		}

		tags, err := jsoncol.DecodeStrings(it.ItemHash)
		if err != nil {
			return apperr.ErrSerialization(msgDecodeHashFailed, err)
		}

		it.Click++
		if err := st.UpdateClick(ctx, it.ItemID, it.Click); err != nil {
			return err
		}

		m, err := requireMember(ctx, tx, memberID)
		if err != nil {
			return err
		}
		recent, err := m.RecentList()
		if err != nil {
			return apperr.ErrSerialization(msgRecentFailed, err)
		}
		encoded, err := recent.Touch(contractID).Encode()
		if err != nil {
			return apperr.ErrSerialization(msgRecentFailed, err)
		}
		if err := member.NewStore(tx).UpdateRecent(ctx, m.MemberID, encoded); err != nil {
			return err
		}

		out = ContractDetailResponse{
			ItemName:     it.ItemName,
			Price:        it.Price,
			ItemImage:    it.ItemImage,
			ItemContents: it.ItemContents,
			ItemPlace:    it.ItemPlace,
			ItemHash:     tags,
			Time:         it.Time,
			ContractTime: it.ContractTime,
			Kakao:        it.Kakao,
		}
		return nil
	})
	if err != nil {
		return ContractDetailResponse{}, err
	}
	return out, nil
}

// GET /contracts
func (s *Service) ListContracts(ctx context.Context, f ContractFilter, p Page) (ListContractsResult, error) {
	p = normalizePage(p)
	f.Keyword = strings.TrimSpace(f.Keyword)
	f.Tag = strings.TrimSpace(f.Tag)

	rows, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return ListContractsResult{}, err
	}

	items := make([]ContractSummary, 0, len(rows))
	for _, r := range rows {
		tags, err := jsoncol.DecodeStrings(r.ItemHash)
		if err != nil {
			return ListContractsResult{}, apperr.ErrSerialization(msgDecodeHashFailed, err)
		}
		items = append(items, ContractSummary{
			ContractID: r.ContractID,
			Category:   r.Category,
			Status:     r.Status,
			ItemName:   r.ItemName,
			Price:      r.Price,
			ItemImage:  r.ItemImage,
			ItemPlace:  r.ItemPlace,
			ItemHash:   tags,
			Click:      r.Click,
			AskTime:    r.AskTime,
			CreatedAt:  r.CreatedAt,
		})
	}

	next := p.Offset + p.Limit
	if next >= int(total) {
		next = 0
	} // 0=終端
	return ListContractsResult{Items: items, Total: total, NextOffset: next}, nil
}

// helpers

// authorize: 契約 → 会員 → 権限の順にチェックする
func (s *Service) authorize(ctx context.Context, tx db.DBTX, contractID, memberID int64, deniedMsg string) (*Contract, error) {
	c, err := NewStore(tx).GetContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound(msgInvalidContract)
	}
	if _, err := requireMember(ctx, tx, memberID); err != nil {
		return nil, err
	}
	if !c.OwnedBy(memberID) {
		return nil, apperr.ErrForbidden(deniedMsg)
	}
	return c, nil
}

func requireMember(ctx context.Context, tx db.DBTX, memberID int64) (*member.Member, error) {
	m, err := member.NewStore(tx).GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.ErrInvalidUser(member.MsgInvalidUser)
	}
	return m, nil
}

func normalizePage(p Page) Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
