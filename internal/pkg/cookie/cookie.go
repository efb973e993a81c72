package cookie

import (
	"github.com/gin-gonic/gin"
)

// AccessTokenCookieName is the cookie the identity service sets on login.
const AccessTokenCookieName = "access_token"

func GetAccessToken(c *gin.Context) string {
	token, _ := c.Cookie(AccessTokenCookieName)
	return token
}
