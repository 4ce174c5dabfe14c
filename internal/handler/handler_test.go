package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"stx-trader/internal/crew"
	"stx-trader/internal/domain"
	"stx-trader/internal/provider"
	"stx-trader/internal/service"
	"stx-trader/internal/tools"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

const testAddress = "SP000EXAMPLE"

// toolCallingCrew stands in for the agent runner: it answers the analyst
// task directly and calls the balance tool the way the balance agent would.
type toolCallingCrew struct {
	registry *tools.Registry
	err      error
}

func (c *toolCallingCrew) Kickoff(ctx context.Context, tasks []crew.Task) (*crew.Output, error) {
	if c.err != nil {
		return nil, c.err
	}
	balanceTool, err := c.registry.Get(tools.BalanceToolName)
	if err != nil {
		return nil, err
	}
	out, err := balanceTool.Call(ctx, `{"address":"`+testAddress+`"}`)
	if err != nil {
		return nil, err
	}
	return &crew.Output{
		Results: []domain.TaskResult{
			{Kind: tasks[0].Kind, Role: tasks[0].Role.Name, Output: "Prices are steady.\nRecommendation: HOLD", Recommendation: domain.RecommendationHold},
			{Kind: tasks[1].Kind, Role: tasks[1].Role.Name, Output: out},
		},
		Usage: domain.TokenUsage{PromptTokens: 1200, CompletionTokens: 300, TotalTokens: 1500, SuccessfulRequests: 3},
	}, nil
}

type testEnv struct {
	router *gin.Engine
	crew   *toolCallingCrew
}

func newTestEnv(t *testing.T, hiro http.HandlerFunc) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("test")

	quote, err := os.ReadFile("../provider/testdata/cmc_quote.json")
	require.NoError(t, err)
	cmcSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(quote)
	}))
	t.Cleanup(cmcSrv.Close)
	hiroSrv := httptest.NewServer(hiro)
	t.Cleanup(hiroSrv.Close)

	prices := provider.NewPriceFetcher(provider.NewCoinMarketCapProvider(tracer, cmcSrv.URL, "key", 5*time.Second))
	balances := provider.NewBalanceFetcher(provider.NewHiroProvider(tracer, hiroSrv.URL, 5*time.Second))
	registry, err := tools.NewDefaultRegistry(prices, balances)
	require.NoError(t, err)

	orch := &toolCallingCrew{registry: registry}
	svc := service.NewAnalysisService(tracer, prices, orch, service.NewMemoryReportStore(time.Hour), nil, false)

	r := gin.New()
	New(tracer, svc, registry).RegisterRoutes(r)
	return &testEnv{router: r, crew: orch}
}

func hiroBalance(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func (e *testEnv) postForm(t *testing.T, address string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	form := url.Values{"address": {address}}
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return w, doc
}

func TestIndexShowsForm(t *testing.T) {
	env := newTestEnv(t, hiroBalance(`{}`))

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "STX Trader Crew", doc.Find("h2").Text())
	assert.Equal(t, "Run Analysis", doc.Find("button[type=submit]").Text())
	assert.Contains(t, doc.Find("label").Text(), "STX Address")
	assert.Equal(t, "Enter STX Address, then click 'Run Analysis' to see results.", doc.Find("#idle-hint").Text())
	assert.Equal(t, "Analyzing...", doc.Find("#spinner p").Text())
	assert.Zero(t, doc.Find("#status").Length())
}

func TestAnalyzeRendersBalanceWithoutEmptySections(t *testing.T) {
	env := newTestEnv(t, hiroBalance(`{"stx":{"balance":"2000000"},"fungible_tokens":{},"non_fungible_tokens":{}}`))

	w, doc := env.postForm(t, testAddress)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Analysis complete!", doc.Find("#status").Text())
	assert.Equal(t, "STX Balance: 2.000000 STX", doc.Find("#stx-balance").Text())
	assert.Zero(t, doc.Find("#nft-holdings").Length())
	assert.Zero(t, doc.Find("#fungible-holdings").Length())
	assert.Contains(t, doc.Find(".widget-recommendation").Text(), "Market Recommendation: Prices are steady.")
	assert.Contains(t, doc.Find("#token-usage").Text(), "1,500 total")
	assert.Zero(t, doc.Find(".notice").Length())

	link := doc.Find("#download")
	assert.Equal(t, "Download Analysis Report (Text)", link.Text())
	filename, _ := link.Attr("download")
	assert.True(t, strings.HasSuffix(filename, "_stx_trader_analysis.txt"), filename)
}

func TestAnalyzeRendersHoldings(t *testing.T) {
	env := newTestEnv(t, hiroBalance(`{
		"stx":{"balance":"1500000"},
		"fungible_tokens":{"SP3.token::alex":{"balance":"2500000"}},
		"non_fungible_tokens":{"SP2.guild::explorer":{"count":"2"}}
	}`))

	_, doc := env.postForm(t, testAddress)

	assert.Equal(t, "STX Balance: 1.500000 STX", doc.Find("#stx-balance").Text())
	assert.Equal(t, "SP2.guild::explorer: 2 owned", doc.Find("#nft-holdings p").Text())
	assert.Equal(t, "SP3.token::alex: 2.500000", doc.Find("#fungible-holdings p").Text())
}

func TestAnalyzeBalanceNotFoundShowsNotice(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "address not found", http.StatusNotFound)
	})

	w, doc := env.postForm(t, testAddress)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Analysis complete!", doc.Find("#status").Text())
	notice := doc.Find(".notice").Text()
	assert.True(t, strings.HasPrefix(notice, "Error fetching balance: "), notice)
	assert.Contains(t, notice, "hiro API error 404: address not found")
	assert.Zero(t, doc.Find("#stx-balance").Length())
	assert.Equal(t, 1, doc.Find(".widget-output").Length())
}

func TestAnalyzeEmptyAddressStaysIdle(t *testing.T) {
	env := newTestEnv(t, hiroBalance(`{}`))

	w, doc := env.postForm(t, "   ")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, doc.Find("#idle-hint").Length())
	assert.Zero(t, doc.Find("#error").Length())
}

func TestAnalyzeFailureShowsError(t *testing.T) {
	env := newTestEnv(t, hiroBalance(`{}`))
	env.crew.err = errors.New("model unavailable")

	w, doc := env.postForm(t, testAddress)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An error occurred: run analysis: model unavailable", doc.Find("#error").Text())
	assert.Equal(t, "Please check your inputs and try again.", doc.Find("#retry-hint").Text())
}

func TestDownloadReport(t *testing.T) {
	env := newTestEnv(t, hiroBalance(`{"stx":{"balance":"2000000"}}`))

	_, doc := env.postForm(t, testAddress)
	href, ok := doc.Find("#download").Attr("href")
	require.True(t, ok)

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, href, nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Regexp(t, `^attachment; filename=\d{8}_\d{6}_stx_trader_analysis\.txt$`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "STX Trader Analysis")
	assert.Contains(t, w.Body.String(), "recommendation: HOLD")
}

func TestDownloadUnknownReport(t *testing.T) {
	env := newTestEnv(t, hiroBalance(`{}`))

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reports/missing/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
