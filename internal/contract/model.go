package contract

import (
	"database/sql"
	"time"
)

// Category は作成者がどちら側かを表す
type Category string

const (
	CategoryLend   Category = "LEND"
	CategoryBorrow Category = "BORROW"
)

// ParseCategory: LEND / BORROW の完全一致のみ受け付ける
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryLend, CategoryBorrow:
		return Category(s), true
	}
	return "", false
}

type Status string

const StatusNone Status = "NONE"

// Item は items テーブルの1行を表す
type Item struct {
	ItemID       int64     `db:"item_id"`
	ItemName     string    `db:"item_name"`
	Price        int64     `db:"price"`
	ItemImage    string    `db:"item_image"`
	ItemContents string    `db:"item_contents"`
	ItemPlace    string    `db:"item_place"`
	ItemHash     string    `db:"item_hash"` // JSON配列 (["tag1","tag2"])
	Time         string    `db:"time"`
	ContractTime string    `db:"contract_time"`
	Kakao        string    `db:"kakao"`
	Click        int64     `db:"click"`
	CreatedAt    time.Time `db:"created_at"`
}

// Contract は contracts テーブルの1行を表す
type Contract struct {
	ContractID     int64         `db:"contract_id"`
	ItemID         int64         `db:"item_id"`
	LendMemberID   sql.NullInt64 `db:"lend_member_id"`
	BorrowMemberID sql.NullInt64 `db:"borrow_member_id"`
	Category       Category      `db:"category"`
	Status         Status        `db:"status"`
	AskTime        time.Time     `db:"ask_time"`
}

// assignCreator: BORROW なら lend_member、LEND なら borrow_member に作成者を入れる（既存データと同じ対応）
func (c *Contract) assignCreator(memberID int64) {
	switch c.Category {
	case CategoryBorrow:
		c.LendMemberID = sql.NullInt64{Int64: memberID, Valid: true}
	case CategoryLend:
		c.BorrowMemberID = sql.NullInt64{Int64: memberID, Valid: true}
	}
}

// OwnedBy: 保存済みの category に対応する役割カラムが memberID なら修正・削除できる
func (c *Contract) OwnedBy(memberID int64) bool {
	switch c.Category {
	case CategoryBorrow:
		return c.LendMemberID.Valid && c.LendMemberID.Int64 == memberID
	case CategoryLend:
		return c.BorrowMemberID.Valid && c.BorrowMemberID.Int64 == memberID
	}
	return false
}

// 一覧・エクスポート用 (contracts JOIN items)
type listRow struct {
	ContractID int64     `db:"contract_id"`
	Category   Category  `db:"category"`
	Status     Status    `db:"status"`
	AskTime    time.Time `db:"ask_time"`
	ItemName   string    `db:"item_name"`
	Price      int64     `db:"price"`
	ItemImage  string    `db:"item_image"`
	ItemPlace  string    `db:"item_place"`
	ItemHash   string    `db:"item_hash"`
	Click      int64     `db:"click"`
	CreatedAt  time.Time `db:"created_at"`
}

type ContractFilter struct {
	Category *Category
	Status   *Status
	Keyword  string // item_name 部分一致
	Tag      string // item_hash に含まれるタグ
	MemberID *int64 // lend/borrow どちらかに入っている
}

type Page struct {
	Limit  int
	Offset int
}
