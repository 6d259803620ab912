package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"aecofarm-backend/internal/platform/apperr"
	"aecofarm-backend/internal/platform/response"
)

const CtxMemberIDKey = "member_id"

// RequireAuth: Authorization: Bearer <token> を検証して context に member_id を詰める
func RequireAuth(iss *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.Abort(c, apperr.ErrInvalidUser("missing Authorization header"))
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, apperr.ErrInvalidUser("invalid Authorization header"))
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			response.Abort(c, apperr.ErrInvalidUser("empty token"))
			return
		}

		memberID, err := iss.Verify(tokenStr)
		if err != nil {
			response.Abort(c, apperr.ErrInvalidUser("invalid token"))
			return
		}

		c.Set(CtxMemberIDKey, memberID)
		c.Next()
	}
}

// MemberID: RequireAuth が詰めた member_id を取り出す
func MemberID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxMemberIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
