package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kv-base-hack/crypto-dashboard/common"
	"github.com/kv-base-hack/crypto-dashboard/internal/notify"
	"github.com/kv-base-hack/crypto-dashboard/lib/coingecko"
	"github.com/kv-base-hack/crypto-dashboard/render"
	"github.com/kv-base-hack/crypto-dashboard/storage"
	"github.com/kv-base-hack/crypto-dashboard/storage/cache"
	"github.com/kv-base-hack/crypto-dashboard/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRefresher struct {
	mutex    sync.Mutex
	triggers int
}

func (f *fakeRefresher) Trigger() {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.triggers++
}

func (f *fakeRefresher) count() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.triggers
}

type fakeInvalidator struct {
	err   error
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.calls++
	return f.err
}

var testCoins = []common.CoinSummary{
	{ID: "bitcoin", Name: "Bitcoin", CurrentPrice: 50000, MarketCap: 1000000000, TotalVolume: 20000000, Image: "http://x/btc.png"},
	{ID: "ethereum", Name: "Ethereum", CurrentPrice: 3000, MarketCap: 400000000, TotalVolume: 9000000, Image: "http://x/eth.png"},
}

func testPage(withChart bool) *render.Page {
	options, _ := render.NewCoinOptions(testCoins)
	sel, _ := render.Resolve(common.Selection{}, options)
	var series *common.PriceSeries
	if withChart {
		series = &common.PriceSeries{{Timestamp: 1000, Price: 49000}, {Timestamp: 2000, Price: 50000}}
	}
	return render.NewPage(time.Unix(1700000000, 0), testCoins, options, sel, series, nil)
}

func newTestServer(t *testing.T) (*Server, *storage.Storage, *fakeRefresher, *fakeInvalidator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop().Sugar()
	store := storage.NewStorage(log, common.Selection{})
	refresher := &fakeRefresher{}
	invalidator := &fakeInvalidator{}
	s := NewServer(log, ":0", store, refresher, invalidator, 30*time.Second)
	// the fake refresher never publishes
	s.passWait = 50 * time.Millisecond
	return s, store, refresher, invalidator
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Dashboard(t *testing.T) {
	s, store, _, _ := newTestServer(t)

	w := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Loading market data")
	assert.Contains(t, w.Body.String(), `content="30"`)

	store.SetPage(testPage(true))
	w = do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Crypto Dashboard</title>")
	assert.Contains(t, body, "Current price:</b> $50000")
	assert.Contains(t, body, "$1,000,000,000")
	assert.Contains(t, body, `<option value="Bitcoin" selected>Bitcoin</option>`)
	assert.Contains(t, body, `<option value="1 Hari" selected>1 Hari</option>`)
	assert.Contains(t, body, `width="80"`)
	assert.Contains(t, body, `src="/chart"`)
}

func TestServer_DashboardHalted(t *testing.T) {
	s, store, _, _ := newTestServer(t)

	notices := notify.New()
	notices.Errorf("Failed to fetch coin data from CoinGecko (status code %d)", 500)
	store.SetPage(render.NewHaltedPage(time.Now(), notices.List()))

	w := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "(status code 500)")
	assert.NotContains(t, body, "<select")
	assert.NotContains(t, body, "Current price")
	assert.NotContains(t, body, "/chart")
}

func TestServer_SelectionForm(t *testing.T) {
	s, store, refresher, _ := newTestServer(t)

	form := url.Values{"coin": {"Ethereum"}, "range": {"7 Hari"}}
	req := httptest.NewRequest(http.MethodPost, "/selection", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := do(s, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.Equal(t, common.Selection{Coin: "Ethereum", Range: "7 Hari"}, store.Selection())
	assert.Equal(t, 1, refresher.count())

	req = httptest.NewRequest(http.MethodPost, "/selection", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = do(s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, refresher.count())
}

func TestServer_SelectionFormWaitsForPass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		if r.URL.Path == "/coins/markets" {
			body, _ := json.Marshal(testCoins)
			_, _ = w.Write(body)
			return
		}
		_, _ = w.Write([]byte(`{"prices":[[1000,1],[2000,2]]}`))
	}))
	defer upstream.Close()

	log := zap.NewNop().Sugar()
	store := storage.NewStorage(log, common.Selection{Range: "1 Hari"})
	client := coingecko.NewCoinGecko(upstream.URL, time.Second)
	topCoins := worker.NewTopCoins(log, client, cache.NewMemory(), time.Minute)
	refresh := worker.NewRefresh(log, time.Hour, topCoins, worker.NewHistory(log, client), store)
	s := NewServer(log, ":0", store, refresh, topCoins, 30*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = refresh.Run(ctx) }()
	require.Eventually(t, func() bool { return store.Page() != nil }, 5*time.Second, 10*time.Millisecond)

	submit := func(coin, rng string) {
		form := url.Values{"coin": {coin}, "range": {rng}}
		req := httptest.NewRequest(http.MethodPost, "/selection", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := do(s, req)
		require.Equal(t, http.StatusSeeOther, w.Code)
	}

	submit("Ethereum", "7 Hari")
	assert.Equal(t, common.Selection{Coin: "Ethereum", Range: "7 Hari"}, store.Page().Selection)

	body := do(s, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.Contains(t, body, `<option value="Ethereum" selected>Ethereum</option>`)
	assert.Contains(t, body, `<option value="7 Hari" selected>7 Hari</option>`)
	assert.NotContains(t, body, `<option value="Bitcoin" selected>`)

	// the next change posts back what the dropdowns showed
	submit("Ethereum", "1 Bulan")
	assert.Equal(t, common.Selection{Coin: "Ethereum", Range: "1 Bulan"}, store.Selection())
	assert.Equal(t, common.Selection{Coin: "Ethereum", Range: "1 Bulan"}, store.Page().Selection)
}

func TestFormSelection(t *testing.T) {
	page := testPage(false)

	// stored choice wins while the page still shows the previous pass
	assert.Equal(t, common.Selection{Coin: "Ethereum", Range: "3 Bulan"},
		formSelection(common.Selection{Coin: "Ethereum", Range: "3 Bulan"}, page))
	// unknown values fall back to what the page resolved
	assert.Equal(t, common.Selection{Coin: "Bitcoin", Range: "7 Hari"},
		formSelection(common.Selection{Coin: "Dogecoin", Range: "7 Hari"}, page))
	assert.Equal(t, common.Selection{Coin: "Ethereum"},
		formSelection(common.Selection{Coin: "Ethereum"}, nil))
}

func TestServer_Chart(t *testing.T) {
	s, store, _, _ := newTestServer(t)

	w := do(s, httptest.NewRequest(http.MethodGet, "/chart", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	store.SetPage(testPage(false))
	w = do(s, httptest.NewRequest(http.MethodGet, "/chart", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), ErrNoChart.Error())

	store.SetPage(testPage(true))
	w = do(s, httptest.NewRequest(http.MethodGet, "/chart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Harga")
}

func TestServer_Page(t *testing.T) {
	s, store, _, _ := newTestServer(t)

	w := do(s, httptest.NewRequest(http.MethodGet, "/v1/page", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	store.SetPage(testPage(true))
	w = do(s, httptest.NewRequest(http.MethodGet, "/v1/page", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Page render.Page `json:"page"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"Bitcoin", "Ethereum"}, res.Page.CoinNames)
	assert.Equal(t, common.Selection{Coin: "Bitcoin", Range: "1 Hari"}, res.Page.Selection)
	require.NotNil(t, res.Page.Summary)
	assert.Equal(t, "$50000", res.Page.Summary.Price)
	require.NotNil(t, res.Page.Chart)
	assert.Len(t, res.Page.Chart.Points, 2)
}

func TestServer_Options(t *testing.T) {
	s, store, _, _ := newTestServer(t)
	store.SetPage(testPage(false))

	w := do(s, httptest.NewRequest(http.MethodGet, "/v1/options", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Coins  []string           `json:"coins"`
		Ranges []common.TimeRange `json:"ranges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"Bitcoin", "Ethereum"}, res.Coins)
	assert.Equal(t, common.TimeRanges, res.Ranges)
}

func TestServer_SelectionAPI(t *testing.T) {
	s, store, refresher, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/selection", strings.NewReader(`{"range":"1 Tahun"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(s, req)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "1 Tahun", store.Selection().Range)
	assert.Equal(t, 1, refresher.count())

	req = httptest.NewRequest(http.MethodPost, "/v1/selection", strings.NewReader(`not json`))
	req.Header.Set("Content-Type", "application/json")
	w = do(s, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, httptest.NewRequest(http.MethodGet, "/v1/selection", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var res struct {
		Selection common.Selection `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, common.Selection{Range: "1 Tahun"}, res.Selection)
}

func TestServer_InvalidateCache(t *testing.T) {
	s, _, refresher, invalidator := newTestServer(t)

	w := do(s, httptest.NewRequest(http.MethodPost, "/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, invalidator.calls)
	assert.Equal(t, 1, refresher.count())

	invalidator.err = errors.New("redis down")
	w = do(s, httptest.NewRequest(http.MethodPost, "/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, refresher.count())
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s, _, _, _ := newTestServer(t)

	w := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestServer_StreamPages(t *testing.T) {
	s, store, _, _ := newTestServer(t)
	store.SetPage(testPage(false))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/v1/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var first render.Page
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Nil(t, first.Chart)

	store.SetPage(testPage(true))
	var second render.Page
	require.NoError(t, conn.ReadJSON(&second))
	require.NotNil(t, second.Chart)
	assert.Equal(t, 1, second.Chart.Days)
}

func TestServer_Run(t *testing.T) {
	s, _, _, _ := newTestServer(t)
	s.bindAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}
