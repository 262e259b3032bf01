package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/cars/:id", func(c *gin.Context) {
		id, ok := ParamID(c, "id")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	cases := map[string]int{
		"/cars/12":  http.StatusOK,
		"/cars/0":   http.StatusBadRequest,
		"/cars/-3":  http.StatusBadRequest,
		"/cars/abc": http.StatusBadRequest,
	}
	for path, want := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestQueryHelpers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?completed=true&limit=x&n=4", nil)

	b := QueryBool(c, "completed")
	if assert.NotNil(t, b) {
		assert.True(t, *b)
	}
	assert.Nil(t, QueryBool(c, "missing"))
	assert.Equal(t, 10, QueryInt(c, "limit", 10))
	assert.Equal(t, 4, QueryInt(c, "n", 10))
}
