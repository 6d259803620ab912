package borrow

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"aecofarm-backend/internal/member"
	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/auth"
	"aecofarm-backend/internal/platform/response"
)

type Handler struct{ svc API }

func RegisterRoutes(r gin.IRoutes, svc API) {
	h := &Handler{svc: svc}
	// 既存クライアントが使っている綴りのまま
	r.POST("/borrow/reqeust/:contractId", h.RequestBorrow)
	r.GET("/borrow/requests/:contractId", h.ListRequests)
}

// RequestBorrow godoc
// @Summary      借用リクエスト
// @Tags         borrow
// @Produce      json
// @Security     Bearer
// @Param        contractId  path      int  true  "契約ID"
// @Success      200         {object}  response.Envelope{data=RequestResponse}
// @Failure      400         {object}  response.Envelope
// @Failure      401         {object}  response.Envelope
// @Failure      404         {object}  response.Envelope
// @Router       /borrow/reqeust/{contractId} [post]
func (h *Handler) RequestBorrow(c *gin.Context) {
	memberID, contractID, ok := idsFrom(c)
	if !ok {
		return
	}
	res, err := h.svc.RequestBorrow(c.Request.Context(), contractID, memberID)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}

// ListRequests godoc
// @Summary      契約に届いた借用リクエスト一覧（作成者のみ）
// @Tags         borrow
// @Produce      json
// @Security     Bearer
// @Param        contractId  path      int  true  "契約ID"
// @Success      200         {object}  response.Envelope{data=[]RequestResponse}
// @Failure      400         {object}  response.Envelope
// @Failure      401         {object}  response.Envelope
// @Failure      403         {object}  response.Envelope
// @Failure      404         {object}  response.Envelope
// @Router       /borrow/requests/{contractId} [get]
func (h *Handler) ListRequests(c *gin.Context) {
	memberID, contractID, ok := idsFrom(c)
	if !ok {
		return
	}
	res, err := h.svc.ListRequests(c.Request.Context(), contractID, memberID)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}

func idsFrom(c *gin.Context) (memberID, contractID int64, ok bool) {
	memberID, ok = auth.MemberID(c)
	if !ok {
		response.Failure(c, apperr.ErrInvalidUser(member.MsgInvalidUser))
		return 0, 0, false
	}
	contractID, err := strconv.ParseInt(c.Param("contractId"), 10, 64)
	if err != nil || contractID <= 0 {
		response.Failure(c, apperr.ErrInvalid("contractId must be a positive number"))
		return 0, 0, false
	}
	return memberID, contractID, true
}
