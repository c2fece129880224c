package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 錯誤格式：一般錯誤用 detail 或 error，表單錯誤以欄位為 key、值為訊息清單。

func abortDetail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

func writeFieldErrors(c *gin.Context, errs fieldErrors) {
	c.JSON(http.StatusBadRequest, errs)
}

const (
	msgRequired      = "Acest câmp este obligatoriu."
	msgNotFound      = "Not found."
	msgNoDriver      = "Profilul de șofer nu există."
	msgPasswordMatch = "Parolele nu se potrivesc."
	msgUsernameTaken = "A user with that username already exists."
	msgBadCreds      = "No active account found with the given credentials"
	msgInvalidBody   = "JSON parse error"
)
