package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := NewService(&fakeLeads{}, &fakeQualified{}, &fakeCampaigns{}, &fakeMetrics{})

	r := gin.New()
	protected := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextProfileIDKey, uuid.New())
		c.Set(httpkit.ContextRolesKey, roles)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(protected.Group("/dashboard"))
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestSummaryEndpoint(t *testing.T) {
	w := get(newRouter("seller"), "/api/v1/dashboard/summary")
	require.Equal(t, http.StatusOK, w.Code)

	var body SummaryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 5, body.TotalLeads)
	assert.Equal(t, 3, body.LeadsByStatus["new"])
	assert.Equal(t, 8, body.Campaigns.Delivered)
	assert.Equal(t, 1, body.Metrics.Conversions)
}

func TestMenuEndpoint(t *testing.T) {
	var body struct {
		Items []MenuItem `json:"items"`
	}

	w := get(newRouter("seller"), "/api/v1/dashboard/menu")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Items, 5)

	w = get(newRouter("admin"), "/api/v1/dashboard/menu")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Items, 7)
}
