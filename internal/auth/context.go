package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-ordering-service/internal/apperror"
	"github.com/fekuna/omnipos-ordering-service/internal/response"
	"github.com/gin-gonic/gin"
)

// HeaderBusinessKey carries the shared business password on admin routes.
const HeaderBusinessKey = "X-Business-Key"

var (
	ErrUnauthorized  = apperror.New(apperror.KindUnauthorized, "Unauthorized", "missing business key")
	ErrWrongPassword = apperror.New(apperror.KindUnauthorized, "WrongPassword", "wrong business password")
)

// Gate compares against the single shared business password.
type Gate struct {
	password []byte
	resp     *response.Responder
}

func NewGate(password string, resp *response.Responder) *Gate {
	return &Gate{password: []byte(password), resp: resp}
}

func (g *Gate) Check(password string) bool {
	if len(g.password) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), g.password) == 1
}

// RequireBusiness rejects requests without a matching X-Business-Key.
func (g *Gate) RequireBusiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderBusinessKey))
		if key == "" {
			g.resp.Error(c, ErrUnauthorized, "Unauthorized")
			return
		}
		if !g.Check(key) {
			g.resp.Error(c, ErrWrongPassword, "WrongPassword")
			return
		}
		c.Next()
	}
}

type accessInput struct {
	Password string `json:"password"`
}

// Access handles POST /negocio/acceso.
func (g *Gate) Access(c *gin.Context) {
	var in accessInput
	if err := c.ShouldBindJSON(&in); err != nil {
		g.resp.BadRequest(c, "InvalidBody")
		return
	}
	if !g.Check(in.Password) {
		g.resp.Error(c, ErrWrongPassword, "WrongPassword")
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gate) Register(r gin.IRouter) {
	r.POST("/negocio/acceso", g.Access)
}
