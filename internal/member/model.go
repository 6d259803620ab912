package member

import (
	"database/sql"
	"time"

	"aecofarm-backend/internal/platform/jsoncol"
)

// Member は members テーブルの1行を表す
type Member struct {
	MemberID     int64          `db:"member_id"`
	LoginID      string         `db:"login_id"`
	PasswordHash string         `db:"password_hash"`
	Nickname     string         `db:"nickname"`
	Recent       sql.NullString `db:"recent"` // JSON配列 ([1,2,3])
	CreatedAt    time.Time      `db:"created_at"`
}

// RecentList: 最近見た契約ID（古い順）
type RecentList []int64

// Touch: id を全部取り除いてから末尾に追加する
func (l RecentList) Touch(id int64) RecentList {
	out := make(RecentList, 0, len(l)+1)
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return append(out, id)
}

// Latest: 新しい順のコピーを返す
func (l RecentList) Latest() []int64 {
	out := make([]int64, len(l))
	for i, v := range l {
		out[len(l)-1-i] = v
	}
	return out
}

func (l RecentList) Encode() (string, error) {
	return jsoncol.EncodeIDs(l)
}

func (m *Member) RecentList() (RecentList, error) {
	ids, err := jsoncol.DecodeIDs(m.Recent)
	if err != nil {
		return nil, err
	}
	return RecentList(ids), nil
}
