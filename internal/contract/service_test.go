package contract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"aecofarm-backend/internal/member"
	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/db"
	"aecofarm-backend/internal/platform/dbtest"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *sqlx.DB) {
	t.Helper()
	conn := dbtest.NewTestDB(t)
	svc := NewService(conn)
	svc.clock = fixedClock{t: testNow}
	return svc, conn
}

func seedMember(t *testing.T, conn *sqlx.DB, id int64) {
	t.Helper()
	_, err := conn.Exec(
		`INSERT INTO members (member_id, login_id, password_hash, nickname, created_at) VALUES (?, ?, 'x', '', ?)`,
		id, fmt.Sprintf("member%d", id), testNow,
	)
	require.NoError(t, err)
}

func sampleRequest(category string) CreateContractRequest {
	return CreateContractRequest{
		ItemName:     "캠핑 의자",
		Price:        3000,
		ItemImage:    "https://img.example.com/chair.png",
		ItemContents: "접이식 의자 빌려드려요",
		ItemPlace:    "신공학관",
		ItemHash:     []string{"캠핑", "의자", "outdoor"},
		Time:         "10:00~18:00",
		ContractTime: "3일",
		Kakao:        "open.kakao.com/chair",
		Category:     category,
	}
}

func lastContract(t *testing.T, conn *sqlx.DB) *Contract {
	t.Helper()
	var id int64
	require.NoError(t, conn.Get(&id, `SELECT MAX(contract_id) FROM contracts`))
	c, err := NewStore(conn).GetContract(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, c)
	return c
}

func countRows(t *testing.T, conn *sqlx.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.Get(&n, `SELECT COUNT(*) FROM `+table))
	return n
}

func createContract(t *testing.T, svc *Service, conn *sqlx.DB, category string, memberID int64) *Contract {
	t.Helper()
	msg, err := svc.CreateContract(context.Background(), sampleRequest(category), memberID)
	require.NoError(t, err)
	require.Equal(t, MsgCreated, msg)
	return lastContract(t, conn)
}

func recentOf(t *testing.T, conn *sqlx.DB, memberID int64) member.RecentList {
	t.Helper()
	m, err := member.NewStore(conn).GetByID(context.Background(), memberID)
	require.NoError(t, err)
	require.NotNil(t, m)
	l, err := m.RecentList()
	require.NoError(t, err)
	return l
}

func TestCreateContract_BorrowRecordsCreatorAsLendMember(t *testing.T) {
	svc, conn := newTestService(t)
	seedMember(t, conn, 5)

	c := createContract(t, svc, conn, "BORROW", 5)

	assert.Equal(t, CategoryBorrow, c.Category)
	assert.Equal(t, StatusNone, c.Status)
	assert.True(t, c.LendMemberID.Valid)
	assert.Equal(t, int64(5), c.LendMemberID.Int64)
	assert.False(t, c.BorrowMemberID.Valid)
	assert.True(t, c.AskTime.Equal(testNow))

	it, err := NewStore(conn).GetItem(context.Background(), c.ItemID)
	require.NoError(t, err)
	require.NotNil(t, it)
	assert.Equal(t, "캠핑 의자", it.ItemName)
	assert.Equal(t, int64(0), it.Click)
	assert.Equal(t, `["캠핑","의자","outdoor"]`, it.ItemHash)
}

func TestCreateContract_LendRecordsCreatorAsBorrowMember(t *testing.T) {
	svc, conn := newTestService(t)
	seedMember(t, conn, 7)

	c := createContract(t, svc, conn, "LEND", 7)

	assert.False(t, c.LendMemberID.Valid)
	assert.True(t, c.BorrowMemberID.Valid)
	assert.Equal(t, int64(7), c.BorrowMemberID.Int64)
}

func TestCreateContract_UnknownMember(t *testing.T) {
	svc, conn := newTestService(t)

	_, err := svc.CreateContract(context.Background(), sampleRequest("LEND"), 99)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidUser))
	assert.Equal(t, 0, countRows(t, conn, "items"))
	assert.Equal(t, 0, countRows(t, conn, "contracts"))
}

func TestCreateContract_InvalidCategoryPersistsNothing(t *testing.T) {
	svc, conn := newTestService(t)
	seedMember(t, conn, 1)

	_, err := svc.CreateContract(context.Background(), sampleRequest("lend"), 1)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
	assert.Equal(t, 0, countRows(t, conn, "items"))
}

func TestUpdateContract_ByOwnerOverwritesItemAndCategory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	c := createContract(t, svc, conn, "BORROW", 1)

	req := CreateContractRequest{
		ItemName:     "텐트",
		Price:        10000,
		ItemImage:    "tent.png",
		ItemContents: "2인용",
		ItemPlace:    "정문",
		ItemHash:     []string{"텐트"},
		Time:         "주말",
		ContractTime: "1주",
		Kakao:        "tent",
		Category:     "LEND",
	}
	msg, err := svc.UpdateContract(ctx, c.ContractID, req, 1)
	require.NoError(t, err)
	assert.Equal(t, MsgUpdated, msg)

	got, err := NewStore(conn).GetContract(ctx, c.ContractID)
	require.NoError(t, err)
	assert.Equal(t, CategoryLend, got.Category)
	// 役割カラムはそのまま
	assert.Equal(t, int64(1), got.LendMemberID.Int64)
	assert.False(t, got.BorrowMemberID.Valid)

	it, err := NewStore(conn).GetItem(ctx, c.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "텐트", it.ItemName)
	assert.Equal(t, int64(10000), it.Price)
	assert.Equal(t, "tent.png", it.ItemImage)
	assert.Equal(t, "2인용", it.ItemContents)
	assert.Equal(t, "정문", it.ItemPlace)
	assert.Equal(t, `["텐트"]`, it.ItemHash)
	assert.Equal(t, "주말", it.Time)
	assert.Equal(t, "1주", it.ContractTime)
	assert.Equal(t, "tent", it.Kakao)

	// category が変わると同じ作成者でも権限が外れる
	_, err = svc.UpdateContract(ctx, c.ContractID, req, 1)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
}

func TestUpdateContract_NonOwnerIsDeniedAndNothingChanges(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	seedMember(t, conn, 2)
	c := createContract(t, svc, conn, "LEND", 1)

	req := sampleRequest("BORROW")
	req.ItemName = "hijacked"
	_, err := svc.UpdateContract(ctx, c.ContractID, req, 2)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))

	got, err := NewStore(conn).GetContract(ctx, c.ContractID)
	require.NoError(t, err)
	assert.Equal(t, CategoryLend, got.Category)
	it, err := NewStore(conn).GetItem(ctx, c.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "캠핑 의자", it.ItemName)
}

func TestUpdateContract_Errors(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	c := createContract(t, svc, conn, "LEND", 1)

	_, err := svc.UpdateContract(ctx, 12345, sampleRequest("LEND"), 1)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = svc.UpdateContract(ctx, c.ContractID, sampleRequest("LEND"), 42)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidUser))

	_, err = svc.UpdateContract(ctx, c.ContractID, sampleRequest("SWAP"), 1)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestDeleteContract_RemovesContractThenItem(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 3)
	c := createContract(t, svc, conn, "BORROW", 3)

	// アイテムを先に消すとFK違反になる
	err := db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
		return NewStore(tx).DeleteItem(ctx, c.ItemID)
	})
	require.Error(t, err)

	msg, err := svc.DeleteContract(ctx, c.ContractID, 3)
	require.NoError(t, err)
	assert.Equal(t, MsgDeleted, msg)
	assert.Equal(t, 0, countRows(t, conn, "contracts"))
	assert.Equal(t, 0, countRows(t, conn, "items"))
}

func TestDeleteContract_NonOwnerIsDenied(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	seedMember(t, conn, 2)
	c := createContract(t, svc, conn, "BORROW", 1)

	_, err := svc.DeleteContract(ctx, c.ContractID, 2)
	assert.True(t, apperr.Is(err, apperr.CodeForbidden))
	assert.Equal(t, 1, countRows(t, conn, "contracts"))

	_, err = svc.DeleteContract(ctx, 999, 1)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestGetContractDetail_TwiceCountsClicksAndKeepsOneRecentEntry(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	seedMember(t, conn, 2)
	other := createContract(t, svc, conn, "LEND", 1)
	c := createContract(t, svc, conn, "LEND", 1)

	_, err := svc.GetContractDetail(ctx, other.ContractID, 2)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := svc.GetContractDetail(ctx, c.ContractID, 2)
		require.NoError(t, err)
	}

	it, err := NewStore(conn).GetItem(ctx, c.ItemID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), it.Click)
	assert.Equal(t, member.RecentList{other.ContractID, c.ContractID}, recentOf(t, conn, 2))
}

func TestGetContractDetail_ReturnsTagsInOrder(t *testing.T) {
	svc, conn := newTestService(t)
	seedMember(t, conn, 1)
	c := createContract(t, svc, conn, "BORROW", 1)

	res, err := svc.GetContractDetail(context.Background(), c.ContractID, 1)
	require.NoError(t, err)

	want := sampleRequest("BORROW")
	assert.Equal(t, want.ItemHash, res.ItemHash)
	assert.Equal(t, want.ItemName, res.ItemName)
	assert.Equal(t, want.Price, res.Price)
	assert.Equal(t, want.ItemImage, res.ItemImage)
	assert.Equal(t, want.ItemContents, res.ItemContents)
	assert.Equal(t, want.ItemPlace, res.ItemPlace)
	assert.Equal(t, want.Time, res.Time)
	assert.Equal(t, want.ContractTime, res.ContractTime)
	assert.Equal(t, want.Kakao, res.Kakao)
}

func TestGetContractDetail_CollapsesLegacyDuplicates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	for i := 0; i < 7; i++ {
		createContract(t, svc, conn, "LEND", 1)
	}
	_, err := conn.Exec(`UPDATE members SET recent = ? WHERE member_id = 1`, `[3,7,3]`)
	require.NoError(t, err)

	_, err = svc.GetContractDetail(ctx, 3, 1)
	require.NoError(t, err)
	assert.Equal(t, member.RecentList{7, 3}, recentOf(t, conn, 1))
}

func TestGetContractDetail_NullRecentStartsEmpty(t *testing.T) {
	svc, conn := newTestService(t)
	seedMember(t, conn, 1)
	c := createContract(t, svc, conn, "LEND", 1)

	_, err := svc.GetContractDetail(context.Background(), c.ContractID, 1)
	require.NoError(t, err)
	assert.Equal(t, member.RecentList{c.ContractID}, recentOf(t, conn, 1))
}

func TestGetContractDetail_FailuresRollBackClick(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	c := createContract(t, svc, conn, "LEND", 1)

	_, err := svc.GetContractDetail(ctx, c.ContractID, 404)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidUser))

	_, err = conn.Exec(`UPDATE members SET recent = ? WHERE member_id = 1`, `{broken`)
	require.NoError(t, err)
	_, err = svc.GetContractDetail(ctx, c.ContractID, 1)
	assert.True(t, apperr.Is(err, apperr.CodeSerialization))

	it, err := NewStore(conn).GetItem(ctx, c.ItemID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), it.Click)
}

func TestGetContractDetail_MalformedItemHash(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	c := createContract(t, svc, conn, "LEND", 1)
	_, err := conn.Exec(`UPDATE items SET item_hash = 'not json' WHERE item_id = ?`, c.ItemID)
	require.NoError(t, err)

	_, err = svc.GetContractDetail(ctx, c.ContractID, 1)
	assert.True(t, apperr.Is(err, apperr.CodeSerialization))

	_, err = svc.GetContractDetail(ctx, 31337, 1)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestListContracts_FiltersAndPages(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)
	seedMember(t, conn, 2)
	createContract(t, svc, conn, "LEND", 1)
	createContract(t, svc, conn, "BORROW", 1)
	req := sampleRequest("LEND")
	req.ItemName = "보조배터리"
	req.ItemHash = []string{"전자기기"}
	_, err := svc.CreateContract(ctx, req, 2)
	require.NoError(t, err)

	all, err := svc.ListContracts(ctx, ContractFilter{}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	require.Len(t, all.Items, 3)
	assert.Equal(t, "보조배터리", all.Items[0].ItemName, "newest first")
	assert.Equal(t, 0, all.NextOffset)

	lend := CategoryLend
	res, err := svc.ListContracts(ctx, ContractFilter{Category: &lend}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = svc.ListContracts(ctx, ContractFilter{Tag: "전자기기"}, Page{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, []string{"전자기기"}, res.Items[0].ItemHash)

	res, err = svc.ListContracts(ctx, ContractFilter{Keyword: "의자"}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	mine := int64(2)
	res, err = svc.ListContracts(ctx, ContractFilter{MemberID: &mine}, Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)

	res, err = svc.ListContracts(ctx, ContractFilter{}, Page{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, res.Items, 2)
	assert.Equal(t, 2, res.NextOffset)
}

func TestExportContracts_WritesEUCKR(t *testing.T) {
	svc, conn := newTestService(t)
	seedMember(t, conn, 1)
	createContract(t, svc, conn, "LEND", 1)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportContracts(context.Background(), ContractFilter{}, &buf))

	decoded, err := io.ReadAll(transform.NewReader(&buf, korean.EUCKR.NewDecoder()))
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(decoded)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "LEND", records[1][1])
	assert.Equal(t, "캠핑 의자", records[1][3])
	assert.Equal(t, "캠핑|의자|outdoor", records[1][6])
	assert.Equal(t, "2024-05-01 09:00:00", records[1][8])
}

func TestListContracts_MatchesSpecialCharactersLiterally(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seedMember(t, conn, 1)

	items := []struct {
		name string
		tags []string
	}{
		{"100% 면 티셔츠", []string{`a"b`, "<b>&"}},
		{"보조배터리", []string{"50%_off", `back\slash`}},
		{"우산", []string{"50", "off"}},
	}
	for _, it := range items {
		req := sampleRequest("LEND")
		req.ItemName = it.name
		req.ItemHash = it.tags
		_, err := svc.CreateContract(ctx, req, 1)
		require.NoError(t, err)
	}

	tests := []struct {
		name   string
		filter ContractFilter
		want   []string
	}{
		{"tag with quote", ContractFilter{Tag: `a"b`}, []string{"100% 면 티셔츠"}},
		{"tag with html chars", ContractFilter{Tag: "<b>&"}, []string{"100% 면 티셔츠"}},
		{"tag with backslash", ContractFilter{Tag: `back\slash`}, []string{"보조배터리"}},
		{"tag with wildcards", ContractFilter{Tag: "50%_off"}, []string{"보조배터리"}},
		{"percent is not a wildcard in tags", ContractFilter{Tag: "50%"}, []string{}},
		{"percent keyword", ContractFilter{Keyword: "%"}, []string{"100% 면 티셔츠"}},
		{"underscore keyword", ContractFilter{Keyword: "_"}, []string{}},
		{"escape char keyword", ContractFilter{Keyword: "!"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.ListContracts(ctx, tt.filter, Page{})
			require.NoError(t, err)
			names := []string{}
			for _, it := range res.Items {
				names = append(names, it.ItemName)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, int64(len(tt.want)), res.Total)
		})
	}
}
