package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func serveOpenAPI(t *testing.T, baseURL string) *httptest.ResponseRecorder {
	t.Helper()

	res := httptest.NewRecorder()
	OpenAPIHandler(baseURL).ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/openapi.json", nil))
	return res
}

func TestOpenAPIHandler(t *testing.T) {
	res := serveOpenAPI(t, "")

	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "application/json", res.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string `json:"openapi"`
		Info    struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&doc))
	require.Equal(t, "3.0.3", doc.OpenAPI)
	require.Equal(t, "Guestlist API", doc.Info.Title)
	require.Contains(t, doc.Paths, "/api/v1/registrations")
	require.Contains(t, doc.Paths, "/api/v1/users")
	require.Contains(t, doc.Paths, "/api/v1/events/{id}/capacity")
}

func TestOpenAPIHandlerInjectsServerURL(t *testing.T) {
	res := serveOpenAPI(t, "https://guestlist.example.com")

	require.Equal(t, http.StatusOK, res.Code)

	var doc struct {
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&doc))
	require.Len(t, doc.Servers, 1)
	require.Equal(t, "https://guestlist.example.com", doc.Servers[0].URL)
}
