package contract

import "time"

// 登録・修正リクエスト（既存クライアントに合わせて camelCase）
type CreateContractRequest struct {
	ItemName     string   `json:"itemName"`
	Price        int64    `json:"price"`
	ItemImage    string   `json:"itemImage"`
	ItemContents string   `json:"itemContents"`
	ItemPlace    string   `json:"itemPlace"`
	ItemHash     []string `json:"itemHash"`
	Time         string   `json:"time"`
	ContractTime string   `json:"contractTime"`
	Kakao        string   `json:"kakao"`
	Category     string   `json:"category" binding:"required"`
}

type ContractDetailResponse struct {
	ItemName     string   `json:"itemName"`
	Price        int64    `json:"price"`
	ItemImage    string   `json:"itemImage"`
	ItemContents string   `json:"itemContents"`
	ItemPlace    string   `json:"itemPlace"`
	ItemHash     []string `json:"itemHash"`
	Time         string   `json:"time"`
	ContractTime string   `json:"contractTime"`
	Kakao        string   `json:"kakao"`
}

type ContractSummary struct {
	ContractID int64     `json:"contractId"`
	Category   Category  `json:"category"`
	Status     Status    `json:"status"`
	ItemName   string    `json:"itemName"`
	Price      int64     `json:"price"`
	ItemImage  string    `json:"itemImage"`
	ItemPlace  string    `json:"itemPlace"`
	ItemHash   []string  `json:"itemHash"`
	Click      int64     `json:"click"`
	AskTime    time.Time `json:"askTime"`
	CreatedAt  time.Time `json:"createdAt"`
}

type ListContractsResult struct {
	Items      []ContractSummary `json:"items"`
	Total      int64             `json:"total"`
	NextOffset int               `json:"nextOffset"`
}
