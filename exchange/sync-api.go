package exchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cmi-trading/flightbot/domain"
	promclient "github.com/cmi-trading/flightbot/infrastructure/prometheus"
)

var logger = log.New(log.Writer(), "[exchange] ", log.LstdFlags)

// SyncAPI is the authenticated REST facade of the exchange. It holds the
// base URL and credentials and memoizes the bearer token on first use.
//
// Every operation except Token follows the same contract: HTTP 200 means
// a decoded result, anything else is logged and surfaces as a nil or zero
// result. Callers must treat a missing result as "not done", not as a
// reason to crash.
type SyncAPI struct {
	baseURL  string
	username string
	password string

	client *http.Client

	authOnce sync.Once
	token    string
	authErr  error
}

func NewSyncAPI(baseURL, username, password string) *SyncAPI {
	return &SyncAPI{
		baseURL:  baseURL,
		username: username,
		password: password,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Token authenticates on first call and caches the bearer token for the
// lifetime of the API object. An authentication failure is unrecoverable:
// the error is cached as well and every later call returns it.
func (api *SyncAPI) Token() (string, error) {
	api.authOnce.Do(func() {
		api.token, api.authErr = api.authenticate()
	})
	return api.token, api.authErr
}

func (api *SyncAPI) authenticate() (string, error) {
	payload, err := json.Marshal(map[string]string{
		"username": api.username,
		"password": api.password,
	})
	if err != nil {
		return "", err
	}

	res, err := api.client.Post(
		api.baseURL+"/api/user/authenticate",
		"application/json; charset=utf-8",
		bytes.NewReader(payload),
	)
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("authentication rejected with status %d: %s", res.StatusCode, body)
	}

	token := res.Header.Get("Authorization")
	if token == "" {
		return "", fmt.Errorf("authentication response carries no Authorization header")
	}

	return token, nil
}

// do issues one authenticated request. It returns the response body and
// whether the exchange answered 200; every failure path has already been
// logged when it returns false.
func (api *SyncAPI) do(method, path string, payload any) ([]byte, bool) {
	token, err := api.Token()
	if err != nil {
		logger.Printf("cannot issue %s %s without a session: %s", method, path, err)
		return nil, false
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Printf("failed to encode %s %s payload: %s", method, path, err)
			return nil, false
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, api.baseURL+path, body)
	if err != nil {
		logger.Printf("failed to build %s %s request: %s", method, path, err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", token)

	res, err := api.client.Do(req)
	if err != nil {
		logger.Printf("%s %s failed: %s", method, path, err)
		return nil, false
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		logger.Printf("failed to read %s %s response: %s", method, path, err)
		return nil, false
	}

	if res.StatusCode != http.StatusOK {
		logger.Printf("%s %s returned status %d: %s", method, path, res.StatusCode, data)
		return nil, false
	}

	return data, true
}

// SendOrder places one order. A nil result means the order was not placed;
// the failure has already been logged.
func (api *SyncAPI) SendOrder(request domain.OrderRequest) *domain.OrderResponse {
	data, ok := api.do(http.MethodPost, "/api/order", request)
	if !ok {
		return nil
	}

	response := &domain.OrderResponse{}
	if err := json.Unmarshal(data, response); err != nil {
		logger.Printf("failed to decode order response: %s, data: %s", err, data)
		return nil
	}

	promclient.OrdersSentCounter.Inc()
	return response
}

// SendManyOrders places all requests concurrently, one goroutine per
// request, and returns once every send has completed. The result always
// holds exactly one entry per request, nil for failed sends, in no
// particular order relative to the input.
func (api *SyncAPI) SendManyOrders(requests []domain.OrderRequest) []*domain.OrderResponse {
	responses := make([]*domain.OrderResponse, 0, len(requests))
	mu := sync.Mutex{}
	wg := sync.WaitGroup{}

	for _, request := range requests {
		wg.Add(1)
		go func(request domain.OrderRequest) {
			defer wg.Done()

			response := api.SendOrder(request)

			mu.Lock()
			responses = append(responses, response)
			mu.Unlock()
		}(request)
	}

	wg.Wait()
	return responses
}

// Orders lists the caller's open orders.
func (api *SyncAPI) Orders() []domain.OrderResponse {
	data, ok := api.do(http.MethodGet, "/api/order/current-user", nil)
	if !ok {
		return nil
	}

	var orders []domain.OrderResponse
	if err := json.Unmarshal(data, &orders); err != nil {
		logger.Printf("failed to decode orders: %s, data: %s", err, data)
		return nil
	}

	return orders
}

// CancelOrderByID cancels one order and reports whether the exchange
// accepted the cancel.
func (api *SyncAPI) CancelOrderByID(id string) bool {
	_, ok := api.do(http.MethodDelete, "/api/order/"+id, nil)
	return ok
}

// CancelOrder cancels the caller's order resting at one price level.
func (api *SyncAPI) CancelOrder(product string, price float64) bool {
	query := url.Values{}
	query.Set("product", product)
	query.Set("price", strconv.FormatFloat(price, 'f', -1, 64))

	_, ok := api.do(http.MethodDelete, "/api/order?"+query.Encode(), nil)
	return ok
}

// CancelAllOrders fetches the current order list and cancels each order in
// turn. Individual failures are logged and do not abort the batch.
func (api *SyncAPI) CancelAllOrders() {
	for _, order := range api.Orders() {
		api.CancelOrderByID(order.ID)
	}
}

// Products lists the tradable instruments.
func (api *SyncAPI) Products() []domain.Product {
	data, ok := api.do(http.MethodGet, "/api/product", nil)
	if !ok {
		return nil
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		logger.Printf("failed to decode products: %s, data: %s", err, data)
		return nil
	}

	return products
}

// Positions maps each product to the caller's held volume.
func (api *SyncAPI) Positions() map[string]int {
	positions := api.positions()
	if positions == nil {
		return nil
	}

	result := make(map[string]int, len(positions))
	for _, position := range positions {
		result[position.Product] = position.Volume
	}
	return result
}

// NetPositions maps each product to the caller's net position.
func (api *SyncAPI) NetPositions() map[string]int {
	positions := api.positions()
	if positions == nil {
		return nil
	}

	result := make(map[string]int, len(positions))
	for _, position := range positions {
		result[position.Product] = position.NetPosition
	}
	return result
}

func (api *SyncAPI) positions() []domain.Position {
	data, ok := api.do(http.MethodGet, "/api/position/current-user", nil)
	if !ok {
		return nil
	}

	var positions []domain.Position
	if err := json.Unmarshal(data, &positions); err != nil {
		logger.Printf("failed to decode positions: %s, data: %s", err, data)
		return nil
	}

	return positions
}
