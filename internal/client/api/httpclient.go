package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tuparking/tuparking/internal/client/models"
	"github.com/tuparking/tuparking/internal/common"
	"github.com/tuparking/tuparking/internal/logging"
)

// HTTPClient implements Client over JSON/HTTP. It holds the current bearer
// token; concurrent use is safe.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPClient builds a client for the given API base URL (e.g.
// "http://localhost:3000/api"). The timeout bounds each request end to end.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) ClearToken() {
	c.SetToken("")
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// errorBody is the backend's error envelope. Older endpoints use "mensaje".
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"mensaje"`
}

func serverMessage(data []byte, status int) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		if eb.Error != "" {
			return eb.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	return http.StatusText(status)
}

// do issues one request and returns the raw response body on 2xx. Failures
// are classified per the error taxonomy; a 401 additionally matches
// common.ErrUnauthenticated via errors.Is.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, requiresAuth bool) (json.RawMessage, error) {
	var token string
	if requiresAuth {
		token = c.currentToken()
		if token == "" {
			return nil, common.ErrUnauthenticated
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, "Bearer "+token)
	}
	req.Header.Set(common.RequestIDHeader, uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, NewError(KindNetwork, 0, "server unreachable", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindNetwork, 0, "reading response", err)
	}

	c.log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode)

	switch {
	case resp.StatusCode >= 500:
		return nil, NewError(KindServer, resp.StatusCode, serverMessage(data, resp.StatusCode), nil)
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewError(KindClient, resp.StatusCode, serverMessage(data, resp.StatusCode), common.ErrUnauthenticated)
	case resp.StatusCode >= 400:
		return nil, NewError(KindClient, resp.StatusCode, serverMessage(data, resp.StatusCode), nil)
	}

	return data, nil
}

func decodeErr(what string, err error) error {
	return NewError(KindDecode, 0, "malformed "+what+" response", err)
}

// loginResponse is the auth envelope: {"token": "...", "usuario": {...}}.
type loginResponse struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"usuario"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"correo": email, "contrasena": password}

	raw, err := c.do(ctx, http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return nil, err
	}

	var lr loginResponse
	if err := json.Unmarshal(raw, &lr); err != nil {
		return nil, decodeErr("login", err)
	}
	if lr.Token == "" {
		return nil, decodeErr("login", fmt.Errorf("response carries no token"))
	}

	c.SetToken(lr.Token)
	return &AuthResult{Token: lr.Token, User: lr.User}, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "/auth/registro", req, false)
	if err != nil {
		return nil, err
	}

	var lr loginResponse
	if err := json.Unmarshal(raw, &lr); err != nil {
		return nil, decodeErr("register", err)
	}
	if lr.Token == "" {
		return nil, decodeErr("register", fmt.Errorf("response carries no token"))
	}

	c.SetToken(lr.Token)
	return &AuthResult{Token: lr.Token, User: lr.User}, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	raw, err := c.do(ctx, http.MethodGet, "/auth/perfil", nil, true)
	if err != nil {
		return nil, err
	}
	u, err := decodeObject[models.UserProfile](raw, "usuario")
	if err != nil {
		return nil, decodeErr("profile", err)
	}
	return u, nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error) {
	raw, err := c.do(ctx, http.MethodPut, "/auth/perfil", update, true)
	if err != nil {
		return nil, err
	}
	u, err := decodeObject[models.UserProfile](raw, "usuario")
	if err != nil {
		return nil, decodeErr("profile", err)
	}
	return u, nil
}

func (c *HTTPClient) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	raw, err := c.do(ctx, http.MethodGet, "/parqueaderos", nil, true)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[models.Facility](raw, "parqueaderos")
	if err != nil {
		return nil, decodeErr("facility list", err)
	}
	return items, nil
}

func (c *HTTPClient) GetFacility(ctx context.Context, id int64) (*models.Facility, error) {
	raw, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/parqueaderos/%d", id), nil, true)
	if err != nil {
		return nil, err
	}
	f, err := decodeObject[models.Facility](raw, "parqueadero")
	if err != nil {
		return nil, decodeErr("facility", err)
	}
	return f, nil
}

func (c *HTTPClient) ListReservations(ctx context.Context, state models.ReservationState) ([]models.Reservation, error) {
	path := "/reservas"
	if state != "" {
		path += "?estado=" + string(state)
	}

	raw, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[models.Reservation](raw, "reservas")
	if err != nil {
		return nil, decodeErr("reservation list", err)
	}
	return items, nil
}

func (c *HTTPClient) CreateReservation(ctx context.Context, req ReservationRequest) (*models.Reservation, error) {
	raw, err := c.do(ctx, http.MethodPost, "/reservas", req, true)
	if err != nil {
		return nil, err
	}
	r, err := decodeObject[models.Reservation](raw, "reserva")
	if err != nil {
		return nil, decodeErr("reservation", err)
	}
	return r, nil
}

func (c *HTTPClient) CancelReservation(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/reservas/%d/cancelar", id), nil, true)
	return err
}

func (c *HTTPClient) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	raw, err := c.do(ctx, http.MethodGet, "/vehiculos", nil, true)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[models.Vehicle](raw, "vehiculos")
	if err != nil {
		return nil, decodeErr("vehicle list", err)
	}
	return items, nil
}

func (c *HTTPClient) AddVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error) {
	body := map[string]string{"placa": v.Plate, "marca": v.Brand, "color": v.Color}

	raw, err := c.do(ctx, http.MethodPost, "/vehiculos", body, true)
	if err != nil {
		return nil, err
	}
	created, err := decodeObject[models.Vehicle](raw, "vehiculo")
	if err != nil {
		return nil, decodeErr("vehicle", err)
	}
	return created, nil
}

func (c *HTTPClient) DeleteVehicle(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/vehiculos/%d", id), nil, true)
	return err
}

// rechargeResponse: newer backends return "nuevo_saldo", older ones "saldo".
type rechargeResponse struct {
	NewBalance  *decimal.Decimal    `json:"nuevo_saldo"`
	Balance     *decimal.Decimal    `json:"saldo"`
	Transaction *models.Transaction `json:"transaccion"`
}

func (c *HTTPClient) Recharge(ctx context.Context, amount decimal.Decimal, method string) (*RechargeResult, error) {
	body := map[string]any{"monto": amount, "metodo": method}

	raw, err := c.do(ctx, http.MethodPost, "/transacciones/recarga", body, true)
	if err != nil {
		return nil, err
	}

	var rr rechargeResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return nil, decodeErr("recharge", err)
	}

	result := &RechargeResult{Transaction: rr.Transaction}
	switch {
	case rr.NewBalance != nil:
		result.NewBalance = *rr.NewBalance
	case rr.Balance != nil:
		result.NewBalance = *rr.Balance
	default:
		return nil, decodeErr("recharge", fmt.Errorf("response carries no balance"))
	}
	return result, nil
}

func (c *HTTPClient) Transfer(ctx context.Context, recipient string, amount decimal.Decimal) error {
	body := map[string]any{"correo_destinatario": recipient, "monto": amount}

	_, err := c.do(ctx, http.MethodPost, "/transacciones/transferencia", body, true)
	return err
}

func (c *HTTPClient) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	raw, err := c.do(ctx, http.MethodGet, "/transacciones", nil, true)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[models.Transaction](raw, "transacciones")
	if err != nil {
		return nil, decodeErr("transaction list", err)
	}
	return items, nil
}
