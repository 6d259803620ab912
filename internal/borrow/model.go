package borrow

import "time"

// Request は borrow_requests テーブルの1行を表す
type Request struct {
	RequestID   int64     `db:"request_id"`
	RequestULID string    `db:"request_ulid"`
	ContractID  int64     `db:"contract_id"`
	RequesterID int64     `db:"requester_id"`
	RequestedAt time.Time `db:"requested_at"`
}

type RequestResponse struct {
	RequestID   string    `json:"requestId"`
	ContractID  int64     `json:"contractId"`
	RequesterID int64     `json:"requesterId"`
	RequestedAt time.Time `json:"requestedAt"`
}
