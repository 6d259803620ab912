package member

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/auth"
	"aecofarm-backend/internal/platform/response"
)

type Handler struct{ svc *Service }

// RegisterPublicRoutes: 認証なしで叩けるルート（トークン発行）
func RegisterPublicRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.POST("/members/register", h.Register)
	r.POST("/members/login", h.Login)
}

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	r.GET("/members/me", h.Me)
	r.GET("/members/me/recent", h.Recent)
}

// Register godoc
// @Summary      会員登録
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "登録内容"
// @Success      201   {object}  response.Envelope{data=MemberResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      409   {object}  response.Envelope
// @Router       /members/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, apperr.ErrInvalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// Login godoc
// @Summary      ログイン（JWT発行）
// @Tags         members
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "ログイン情報"
// @Success      200   {object}  response.Envelope{data=LoginResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /members/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Failure(c, apperr.ErrInvalid("invalid json or missing required fields"))
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}

// Me godoc
// @Summary      自分の会員情報
// @Tags         members
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Envelope{data=MemberResponse}
// @Failure      401  {object}  response.Envelope
// @Router       /members/me [get]
func (h *Handler) Me(c *gin.Context) {
	id, ok := auth.MemberID(c)
	if !ok {
		response.Failure(c, apperr.ErrInvalidUser(MsgInvalidUser))
		return
	}
	res, err := h.svc.Me(c.Request.Context(), id)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}

// Recent godoc
// @Summary      最近見た契約（新しい順）
// @Tags         members
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  response.Envelope{data=RecentResponse}
// @Failure      401  {object}  response.Envelope
// @Failure      500  {object}  response.Envelope
// @Router       /members/me/recent [get]
func (h *Handler) Recent(c *gin.Context) {
	id, ok := auth.MemberID(c)
	if !ok {
		response.Failure(c, apperr.ErrInvalidUser(MsgInvalidUser))
		return
	}
	res, err := h.svc.RecentContracts(c.Request.Context(), id)
	if err != nil {
		response.Failure(c, err)
		return
	}
	response.OK(c, res)
}
