package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/eufiscalizo-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestJSONWritesEnvelope(t *testing.T) {
	c, rec := newContext()
	JSON(c, http.StatusOK, gin.H{"id": "1"}, map[string]interface{}{"total": 1})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"data":{"id":"1"},"meta":{"total":1}}`, rec.Body.String())
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, rec := newContext()
	Error(c, appErrors.Clone(appErrors.ErrIllegalTransition, "cannot skip"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ILLEGAL_TRANSITION", body["error"]["code"])
	assert.Empty(t, c.Errors)
}

func TestErrorRecordsServerFailures(t *testing.T) {
	c, rec := newContext()
	Error(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, c.Errors, 1)
}

func TestAttachment(t *testing.T) {
	c, rec := newContext()
	Attachment(c, "x.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, `attachment; filename="x.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
