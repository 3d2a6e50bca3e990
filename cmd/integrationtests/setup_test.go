package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	bidding "bid-ledger/internal/biddingService"
	"bid-ledger/internal/catalog"
	"bid-ledger/internal/fanout"
	model "bid-ledger/internal/models"
	"bid-ledger/internal/notification"
	"bid-ledger/internal/repository"
	"bid-ledger/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// SetupTestRouter initializes the router with in-memory storage for integration testing.
func SetupTestRouter() *gin.Engine {
	return SetupTestRouterWithItems()
}

// SetupTestRouterWithItems initializes the router and seeds the catalog with items.
func SetupTestRouterWithItems(items ...model.Item) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := bidding.NewBiddingService(repository.NewMemoryRepo(), catalog.NewMemoryCatalog(items...))
	feed := notification.NewFeed(notification.NewMemoryStore(), notification.DefaultRecentLimit, time.Second)
	return server.SetupRouter(service, feed)
}

// SetupTestRouterWithNotifications wires the full new-bid pipeline over the in-memory bus.
// The returned function stops the pipeline and must be called before the test ends.
func SetupTestRouterWithNotifications(t *testing.T, items ...model.Item) (*gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := fanout.NewMemoryBus("bids", 64, 8, time.Millisecond)
	store := notification.NewMemoryStore()
	consumer := notification.NewConsumer(store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bus.Run(ctx, consumer.Consume) }()

	publisher, err := notification.NewPublisher(bus, "bids")
	require.NoError(t, err)
	publisher.Start()

	service := bidding.NewBiddingService(repository.NewMemoryRepo(), catalog.NewMemoryCatalog(items...),
		bidding.WithPublisher(publisher))
	feed := notification.NewFeed(store, notification.DefaultRecentLimit, time.Second)

	stop := func() {
		publisher.Close()
		cancel()
		require.NoError(t, <-done)
	}
	return server.SetupRouter(service, feed), stop
}

// ExecuteRequest executes an HTTP request and returns the response recorder.
func ExecuteRequest(t *testing.T, router *gin.Engine, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := ExecuteRequest(t, router, method, url, reqBody)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// PlaceBid posts a bid and returns the created bid from the response envelope
func PlaceBid(t *testing.T, router *gin.Engine, itemID, userID, name string, price any) map[string]any {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, router, "POST", "/items/"+itemID+"/bids", map[string]any{
		"userId": userID,
		"name":   name,
		"price":  price,
	})
	require.Equal(t, 201, w.Code, w.Body.String())
	return resp["data"].(map[string]any)
}
