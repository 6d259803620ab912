package contract

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aecofarm-backend/internal/member"
	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/auth"
	"aecofarm-backend/internal/platform/response"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.POST("/contracts", h.CreateContract)
	r.GET("/contracts", h.ListContracts)
	r.GET("/contracts/export", h.ExportContracts)
	r.GET("/contracts/:contractId", h.GetContractDetail)
	r.PUT("/contracts/:contractId", h.UpdateContract)
	r.DELETE("/contracts/:contractId", h.DeleteContract)
}

// ---------- handlers ----------

// CreateContract godoc
// @Summary      契約登録
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body      CreateContractRequest  true  "物品と契約の内容"
// @Success      201   {object}  response.Envelope{data=string}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Failure      500   {object}  response.Envelope
// @Router       /contracts [post]
func (h *Handler) CreateContract(c *gin.Context) {
	memberID, ok := auth.MemberID(c)
	if !ok {
		response.Failure(c, apperr.ErrInvalidUser(member.MsgInvalidUser))
		return
	}
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, apperr.ErrInvalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.CreateContract(c.Request.Context(), req, memberID)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// UpdateContract godoc
// @Summary      契約修正
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        contractId  path      int                    true  "契約ID"
// @Param        body        body      CreateContractRequest  true  "物品と契約の内容"
// @Success      200         {object}  response.Envelope{data=string}
// @Failure      400         {object}  response.Envelope
// @Failure      401         {object}  response.Envelope
// @Failure      403         {object}  response.Envelope
// @Failure      404         {object}  response.Envelope
// @Router       /contracts/{contractId} [put]
func (h *Handler) UpdateContract(c *gin.Context) {
	memberID, contractID, ok := idsFrom(c)
	if !ok {
		return
	}
	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, apperr.ErrInvalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.UpdateContract(c.Request.Context(), contractID, req, memberID)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}

// DeleteContract godoc
// @Summary      契約削除
// @Tags         contracts
// @Produce      json
// @Security     Bearer
// @Param        contractId  path      int  true  "契約ID"
// @Success      200         {object}  response.Envelope{data=string}
// @Failure      400         {object}  response.Envelope
// @Failure      401         {object}  response.Envelope
// @Failure      403         {object}  response.Envelope
// @Failure      404         {object}  response.Envelope
// @Router       /contracts/{contractId} [delete]
func (h *Handler) DeleteContract(c *gin.Context) {
	memberID, contractID, ok := idsFrom(c)
	if !ok {
		return
	}
	res, err := h.svc.DeleteContract(c.Request.Context(), contractID, memberID)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}

// GetContractDetail godoc
// @Summary      契約詳細（クリック数と最近見た物品を更新）
// @Tags         contracts
// @Produce      json
// @Security     Bearer
// @Param        contractId  path      int  true  "契約ID"
// @Success      200         {object}  response.Envelope{data=ContractDetailResponse}
// @Failure      400         {object}  response.Envelope
// @Failure      401         {object}  response.Envelope
// @Failure      404         {object}  response.Envelope
// @Failure      500         {object}  response.Envelope
// @Router       /contracts/{contractId} [get]
func (h *Handler) GetContractDetail(c *gin.Context) {
	memberID, contractID, ok := idsFrom(c)
	if !ok {
		return
	}
	res, err := h.svc.GetContractDetail(c.Request.Context(), contractID, memberID)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}

// ListContracts godoc
// @Summary      契約一覧（新しい順）
// @Tags         contracts
// @Produce      json
// @Security     Bearer
// @Param        category  query     string  false  "LEND / BORROW"  Enums(LEND, BORROW)
// @Param        status    query     string  false  "状態"
// @Param        keyword   query     string  false  "物品名の部分一致"
// @Param        tag       query     string  false  "タグ"
// @Param        mine      query     bool    false  "自分が関わる契約のみ"
// @Param        limit     query     int     false  "件数（最大100）"
// @Param        offset    query     int     false  "開始位置"
// @Success      200       {object}  response.Envelope{data=ListContractsResult}
// @Failure      400       {object}  response.Envelope
// @Failure      401       {object}  response.Envelope
// @Router       /contracts [get]
func (h *Handler) ListContracts(c *gin.Context) {
	f, ok := filterFrom(c)
	if !ok {
		return
	}
	p := Page{
		Limit:  parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Offset: parseIntDefault(c.Query("offset"), 0),
	}
	res, err := h.svc.ListContracts(c.Request.Context(), f, p)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}

// ExportContracts godoc
// @Summary      契約CSVエクスポート（EUC-KR）
// @Tags         contracts
// @Produce      text/csv
// @Security     Bearer
// @Param        category  query     string  false  "LEND / BORROW"  Enums(LEND, BORROW)
// @Param        status    query     string  false  "状態"
// @Param        keyword   query     string  false  "物品名の部分一致"
// @Param        tag       query     string  false  "タグ"
// @Param        mine      query     bool    false  "自分が関わる契約のみ"
// @Success      200       {file}    file
// @Failure      400       {object}  response.Envelope
// @Failure      401       {object}  response.Envelope
// @Router       /contracts/export [get]
func (h *Handler) ExportContracts(c *gin.Context) {
	f, ok := filterFrom(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.svc.ExportContracts(c.Request.Context(), f, &buf); err != nil {
		response.Failure(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="contracts.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=EUC-KR", buf.Bytes())
}

// ---------- helpers ----------

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

func filterFrom(c *gin.Context) (ContractFilter, bool) {
	f := ContractFilter{
		Keyword: c.Query("keyword"),
		Tag:     c.Query("tag"),
	}
	if v := c.Query("category"); v != "" {
		cat, ok := ParseCategory(v)
		if !ok {
			response.Failure(c, apperr.ErrInvalid(msgInvalidCategory))
			return ContractFilter{}, false
		}
		f.Category = &cat
	}
	if v := c.Query("status"); v != "" {
		st := Status(v)
		f.Status = &st
	}
	if c.Query("mine") == "true" {
		if id, ok := auth.MemberID(c); ok {
			f.MemberID = &id
		}
	}
	return f, true
}

func parseIntDefault(s string, d int) int {
	if s == "" {
		return d
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}
