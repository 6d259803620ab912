package member

import "time"

type RegisterRequest struct {
	LoginID  string `json:"loginId" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname"`
}

type LoginRequest struct {
	LoginID  string `json:"loginId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	MemberID int64  `json:"memberId"`
	Token    string `json:"token"`
}

type MemberResponse struct {
	MemberID  int64     `json:"memberId"`
	LoginID   string    `json:"loginId"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"createdAt"`
}

type RecentResponse struct {
	// 最近見た順
	ContractIDs []int64 `json:"contractIds"`
}

func toResponse(m *Member) MemberResponse {
	return MemberResponse{
		MemberID:  m.MemberID,
		LoginID:   m.LoginID,
		Nickname:  m.Nickname,
		CreatedAt: m.CreatedAt,
	}
}
