package fetch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/tablewarden/tablewarden/internal/fetch"
)

const registerPage = `<!DOCTYPE html>
<html><body>
<h1>Register</h1>
<table>
  <thead>
    <tr><th>Name</th><th>KvK</th><th>City</th></tr>
  </thead>
  <tbody>
    <tr><td> Acme BV </td><td>123456.0</td><td>Delft</td></tr>
    <tr><td>Globex NV</td><td>87654321</td><td>Utrecht</td></tr>
  </tbody>
</table>
<table>
  <tr><td>Col</td></tr>
  <tr><td>only one data row makes this a table too</td></tr>
</table>
<table><tr><td>headers only, skipped</td></tr></table>
</body></html>`

func TestParseExtractsTables(t *testing.T) {
	found, err := fetch.Parse(strings.NewReader(registerPage))
	require.NoError(t, err)
	require.Len(t, found, 2)

	first := found[0]
	assert.Equal(t, []string{"Name", "KvK", "City"}, first.Columns)
	require.Equal(t, 2, first.Len())
	assert.Equal(t, "Acme BV", first.Rows[0].Get("Name"))
	// Second column is identifier-normalized at the edge.
	assert.Equal(t, "00123456", first.Rows[0].Get("KvK"))
	assert.Equal(t, "87654321", first.Rows[1].Get("KvK"))
}

func TestParseNoTables(t *testing.T) {
	found, err := fetch.Parse(strings.NewReader("<html><body><p>nothing</p></body></html>"))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestParseRaggedRowsPadded(t *testing.T) {
	page := `<table>
	<tr><th>a</th><th>b</th><th>c</th></tr>
	<tr><td>1</td><td>2</td></tr>
	</table>`

	found, err := fetch.Parse(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "", found[0].Rows[0].Get("c"))
}

func TestClientTables(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(registerPage))
	}))
	defer srv.Close()

	client := fetch.NewClient(fetch.WithRateLimit(rate.Inf, 1))
	found, err := client.Tables(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Contains(t, gotUA, "tablewarden")
}

func TestClientTablesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	client := fetch.NewClient(fetch.WithRateLimit(rate.Inf, 1))
	_, err := client.Tables(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
