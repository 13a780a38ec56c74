package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomePageDegradesWidgets(t *testing.T) {
	u := newUpstream(t, map[string]response{
		"/coins/markets":    {http.StatusOK, marketsBody},
		"/search/trending":  {http.StatusTooManyRequests, `{"error":"rate limited"}`},
		"/coins/categories": {http.StatusOK, `[{"name":"broken"`},
	})
	r := newTestRouter(t, u)

	w := serve(r, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Trending data unavailable.")
	assert.Contains(t, body, "Category data unavailable.")
	assert.Contains(t, body, `href="/coins/bitcoin"`)
	assert.Contains(t, body, `"@type":"WebSite"`)
}

func TestCoinsPagePaginatesLocally(t *testing.T) {
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 25; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		id := "coin-" + string(rune('a'+i))
		b.WriteString(`{"id":"` + id + `","symbol":"c","name":"` + id + `","image":"i.png","current_price":1,"market_cap":1,"total_volume":1,"last_updated":"2024-05-01T12:00:00.000Z"}`)
	}
	b.WriteString("]")
	u := newUpstream(t, map[string]response{"/coins/markets": {http.StatusOK, b.String()}})
	r := newTestRouter(t, u)

	w := serve(r, http.MethodGet, "/coins?page=3", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Page 3 of 3")
	assert.Contains(t, body, `href="/coins/coin-u"`)
	assert.Contains(t, body, `href="/coins/coin-y"`)
	assert.NotContains(t, body, `href="/coins/coin-t"`)
	assert.Contains(t, u.query("/coins/markets"), "per_page=250")

	w = serve(r, http.MethodGet, "/coins?page=99", "")
	assert.Contains(t, w.Body.String(), "Page 3 of 3")
	assert.Equal(t, int32(1), u.calls.Load())
}

func TestCoinPage(t *testing.T) {
	u := newUpstream(t, map[string]response{
		"/coins/bitcoin":      {http.StatusOK, bitcoinBody},
		"/coins/bitcoin/ohlc": {http.StatusOK, `[[1714564800000,60000,61000,59000,60000],[1714608000000,60000,66000,60000,66000]]`},
		"/coins/ethereum":     {http.StatusServiceUnavailable, `{"error":"maintenance"}`},
	})
	r := newTestRouter(t, u)

	t.Run("renders details", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/coins/bitcoin", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "$65,000.00")
		assert.Contains(t, body, `"@type":"FinancialProduct"`)
		assert.Contains(t, body, `<link rel="canonical" href="https://coinhub.example/coins/bitcoin">`)
		assert.Contains(t, body, "7 day technicals")
		assert.Contains(t, body, "+10.00%")
		assert.Contains(t, u.query("/coins/bitcoin/ohlc"), "days=7")
	})

	t.Run("invalid id is not found", func(t *testing.T) {
		before := u.calls.Load()
		w := serve(r, http.MethodGet, "/coins/bad%20id", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Not found")
		assert.Equal(t, before, u.calls.Load())
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/coins/dogwifhat", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "dogwifhat")
	})

	t.Run("upstream failure offers retry", func(t *testing.T) {
		w := serve(r, http.MethodGet, "/coins/ethereum", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Try again")
		assert.Contains(t, body, `href="/coins/ethereum"`)
		assert.NotContains(t, body, "maintenance")
	})
}

func TestPredictionsPage(t *testing.T) {
	u := newUpstream(t, map[string]response{"/coins/markets": {http.StatusOK, marketsBody}})
	r := newTestRouter(t, u)

	w := serve(r, http.MethodGet, "/predictions", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Bitcoin")
	assert.NotContains(t, body, "Tether")
	assert.Contains(t, body, "AI prediction unavailable.")
}

func TestUnknownPageIsNotFound(t *testing.T) {
	r := newTestRouter(t, newUpstream(t, nil))

	w := serve(r, http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "does not exist")
}

func TestRobotsAndSitemap(t *testing.T) {
	t.Run("robots", func(t *testing.T) {
		r := newTestRouter(t, newUpstream(t, nil))
		w := serve(r, http.MethodGet, "/robots.txt", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Sitemap: https://coinhub.example/sitemap.xml")
	})

	t.Run("sitemap with coins", func(t *testing.T) {
		u := newUpstream(t, map[string]response{"/coins/markets": {http.StatusOK, marketsBody}})
		r := newTestRouter(t, u)
		w := serve(r, http.MethodGet, "/sitemap.xml", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<loc>https://coinhub.example/coins/ethereum</loc>")
		assert.Contains(t, u.query("/coins/markets"), "per_page=100")
	})

	t.Run("sitemap without upstream", func(t *testing.T) {
		u := newUpstream(t, map[string]response{"/coins/markets": {http.StatusInternalServerError, `{}`}})
		r := newTestRouter(t, u)
		w := serve(r, http.MethodGet, "/sitemap.xml", "")
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "<loc>https://coinhub.example/predictions</loc>")
		assert.NotContains(t, body, "/coins/")
	})
}
