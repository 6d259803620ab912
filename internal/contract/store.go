package contract

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/doug-martin/goqu/v9/exp"

	"aecofarm-backend/internal/platform/db"
	"aecofarm-backend/internal/platform/jsoncol"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// mysql方言のバッククォートとプレースホルダはSQLiteでもそのまま通る
var dialect = goqu.Dialect("mysql")

type Store struct{ db db.DBTX }

func NewStore(q db.DBTX) *Store { return &Store{db: q} }

// GetContract: 見つからなければ (nil, nil)
func (s *Store) GetContract(ctx context.Context, id int64) (*Contract, error) {
	const q = `
	SELECT contract_id, item_id, lend_member_id, borrow_member_id, category, status, ask_time
	FROM contracts WHERE contract_id = ?`
	var c Contract
	if err := s.db.GetContext(ctx, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	const q = `
	SELECT item_id, item_name, price, item_image, item_contents, item_place, item_hash,
		time, contract_time, kakao, click, created_at
	FROM items WHERE item_id = ?`
	var it Item
	if err := s.db.GetContext(ctx, &it, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (s *Store) InsertItem(ctx context.Context, it *Item) error {
	const q = `
	INSERT INTO items
	(item_name, price, item_image, item_contents, item_place, item_hash, time, contract_time, kakao, click, created_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		it.ItemName, it.Price, it.ItemImage, it.ItemContents, it.ItemPlace, it.ItemHash,
		it.Time, it.ContractTime, it.Kakao, it.Click, it.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ItemID = id
	return nil
}

func (s *Store) InsertContract(ctx context.Context, c *Contract) error {
	const q = `
	INSERT INTO contracts
	(item_id, lend_member_id, borrow_member_id, category, status, ask_time)
	VALUES
	(?, ?, ?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q,
		c.ItemID, c.LendMemberID, c.BorrowMemberID, string(c.Category), string(c.Status), c.AskTime,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ContractID = id
	return nil
}

// UpdateItem: 可変カラムを全部上書き（click と created_at はそのまま）
func (s *Store) UpdateItem(ctx context.Context, it *Item) error {
	const q = `
	UPDATE items
	SET item_name = ?, price = ?, item_image = ?, item_contents = ?, item_place = ?,
		item_hash = ?, time = ?, contract_time = ?, kakao = ?
	WHERE item_id = ?`
	_, err := s.db.ExecContext(ctx, q,
		it.ItemName, it.Price, it.ItemImage, it.ItemContents, it.ItemPlace,
		it.ItemHash, it.Time, it.ContractTime, it.Kakao, it.ItemID,
	)
	return err
}

func (s *Store) UpdateClick(ctx context.Context, itemID, click int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE items SET click = ? WHERE item_id = ?`, click, itemID)
	return err
}

func (s *Store) UpdateCategory(ctx context.Context, contractID int64, c Category) error {
	_, err := s.db.ExecContext(ctx, `UPDATE contracts SET category = ? WHERE contract_id = ?`, string(c), contractID)
	return err
}

func (s *Store) DeleteContract(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE contract_id = ?`, id)
	return err
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE item_id = ?`, id)
	return err
}

// ---- Queries ----

func (s *Store) filtered(f ContractFilter) (*goqu.SelectDataset, error) {
	ds := dialect.From(goqu.T("contracts").As("c")).
		Join(goqu.T("items").As("i"), goqu.On(goqu.I("i.item_id").Eq(goqu.I("c.item_id"))))

	if f.Category != nil {
		ds = ds.Where(goqu.I("c.category").Eq(string(*f.Category)))
	}
	if f.Status != nil {
		ds = ds.Where(goqu.I("c.status").Eq(string(*f.Status)))
	}
	if f.Keyword != "" {
		ds = ds.Where(containsLike("i.item_name", f.Keyword))
	}
	if f.Tag != "" {
		// item_hash はJSON文字列なので、エンコード済みの "tag" で部分一致させる
		quoted, err := jsoncol.EncodeStrings([]string{f.Tag})
		if err != nil {
			return nil, err
		}
		ds = ds.Where(containsLike("i.item_hash", quoted[1:len(quoted)-1]))
	}
	if f.MemberID != nil {
		ds = ds.Where(goqu.Or(
			goqu.I("c.lend_member_id").Eq(*f.MemberID),
			goqu.I("c.borrow_member_id").Eq(*f.MemberID),
		))
	}
	return ds, nil
}

// エスケープ文字は ! （MySQL 既定の \ は JSON の \" や \u003c と衝突する）
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsLike: col に s がそのまま含まれる（% と _ はワイルドカード扱いしない）
func containsLike(col, s string) exp.LiteralExpression {
	return goqu.L("? LIKE ? ESCAPE '!'", goqu.I(col), "%"+likeEscaper.Replace(s)+"%")
}

// List: 新しい順に1ページ分と、条件に合う総件数を返す
func (s *Store) List(ctx context.Context, f ContractFilter, p Page) ([]listRow, int64, error) {
	base, err := s.filtered(f)
	if err != nil {
		return nil, 0, err
	}

	q, args, err := base.Select(
		goqu.I("c.contract_id").As("contract_id"),
		goqu.I("c.category").As("category"),
		goqu.I("c.status").As("status"),
		goqu.I("c.ask_time").As("ask_time"),
		goqu.I("i.item_name").As("item_name"),
		goqu.I("i.price").As("price"),
		goqu.I("i.item_image").As("item_image"),
		goqu.I("i.item_place").As("item_place"),
		goqu.I("i.item_hash").As("item_hash"),
		goqu.I("i.click").As("click"),
		goqu.I("i.created_at").As("created_at"),
	).
		Order(goqu.I("c.contract_id").Desc()).
		Limit(uint(p.Limit)).
		Offset(uint(p.Offset)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, 0, err
	}

	var rows []listRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, err
	}

	cq, cargs, err := base.Select(goqu.COUNT(goqu.Star()).As("total")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, cq, cargs...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
