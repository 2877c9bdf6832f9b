package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/domain/repository"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

// The backend parses amounts as JSON numbers, not strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const userIDHeader = "User-Id"

// APIRepositoryImpl implementa o BudgetAPI sobre HTTP/JSON.
type APIRepositoryImpl struct {
	baseURL          string
	client           *http.Client
	sendUserIDHeader bool
}

// NewAPIRepository cria uma nova implementação do BudgetAPI.
func NewAPIRepository(baseURL string, timeout time.Duration, sendUserIDHeader bool) repository.BudgetAPI {
	return &APIRepositoryImpl{
		baseURL:          strings.TrimRight(baseURL, "/"),
		client:           &http.Client{Timeout: timeout},
		sendUserIDHeader: sendUserIDHeader,
	}
}

type request struct {
	method  string
	path    string
	token   string
	userID  entity.UserID
	body    interface{}
	decoded interface{}
}

// do executa uma única requisição; sem retry e sem cache.
func (r *APIRepositoryImpl) do(ctx context.Context, req request) ([]byte, error) {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, r.baseURL+req.path, body)
	if err != nil {
		return nil, fmt.Errorf("error building request %s %s: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if r.sendUserIDHeader && req.userID != "" {
		httpReq.Header.Set(userIDHeader, string(req.userID))
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response of %s %s: %w", req.method, req.path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return data, newError(resp.StatusCode, data)
	}

	if req.decoded != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, req.decoded); err != nil {
			return data, fmt.Errorf("error decoding response of %s %s: %w", req.method, req.path, err)
		}
	}
	return data, nil
}

type tokenResponse struct {
	Token string `json:"token"`
}

// --- Auth ---

func (r *APIRepositoryImpl) Login(ctx context.Context, creds entity.Credentials) (string, error) {
	var out tokenResponse
	if _, err := r.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: creds, decoded: &out}); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("login response did not contain a token")
	}
	return out.Token, nil
}

func (r *APIRepositoryImpl) Register(ctx context.Context, in entity.RegisterInput) (string, error) {
	var out tokenResponse
	if _, err := r.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: in, decoded: &out}); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("register response did not contain a token")
	}
	return out.Token, nil
}

func (r *APIRepositoryImpl) GetUserInfo(ctx context.Context, token string) (entity.User, error) {
	var user entity.User
	_, err := r.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/me",
		token:   token,
		body:    struct{}{},
		decoded: &user,
	})
	return user, err
}

func (r *APIRepositoryImpl) Logout(ctx context.Context, token string) error {
	_, err := r.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/logout",
		token:  token,
		body:   map[string]string{"authToken": token},
	})
	return err
}

// RefreshToken returns the new token, or "" when the backend did not issue one.
func (r *APIRepositoryImpl) RefreshToken(ctx context.Context, token string) (string, error) {
	var out tokenResponse
	_, err := r.do(ctx, request{
		method:  http.MethodPost,
		path:    "/auth/refresh",
		token:   token,
		body:    map[string]string{"authToken": token},
		decoded: &out,
	})
	return out.Token, err
}

// --- Budget ---

func (r *APIRepositoryImpl) CreateBudget(ctx context.Context, token string, in entity.BudgetInput) (*entity.Budget, error) {
	data, err := r.do(ctx, request{method: http.MethodPost, path: "/budget", token: token, body: in})
	if err != nil {
		return nil, err
	}
	return decodeBudget(data)
}

// GetBudget returns nil without error when the user has no budget yet.
func (r *APIRepositoryImpl) GetBudget(ctx context.Context, token string) (*entity.Budget, error) {
	data, err := r.do(ctx, request{method: http.MethodGet, path: "/budget", token: token})
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeBudget(data)
}

// decodeBudget treats an empty body, null and {} as "no budget".
func decodeBudget(data []byte) (*entity.Budget, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("error decoding budget: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	var budget entity.Budget
	if err := json.Unmarshal(trimmed, &budget); err != nil {
		return nil, fmt.Errorf("error decoding budget: %w", err)
	}
	return &budget, nil
}

type historyResponse struct {
	BudgetHistory []entity.BudgetHistoryEntry `json:"budget_history"`
}

func (r *APIRepositoryImpl) GetBudgetHistory(ctx context.Context, token string, budgetID int64) ([]entity.BudgetHistoryEntry, error) {
	var out historyResponse
	_, err := r.do(ctx, request{
		method:  http.MethodGet,
		path:    "/budget/" + strconv.FormatInt(budgetID, 10) + "/history",
		token:   token,
		decoded: &out,
	})
	if err != nil {
		return nil, err
	}
	if out.BudgetHistory == nil {
		return []entity.BudgetHistoryEntry{}, nil
	}
	return out.BudgetHistory, nil
}

// GetBalance reads the same history endpoint and keeps only the last entry.
func (r *APIRepositoryImpl) GetBalance(ctx context.Context, token string, budgetID int64) (decimal.Decimal, error) {
	history, err := r.GetBudgetHistory(ctx, token, budgetID)
	if err != nil {
		return decimal.Zero, err
	}
	return entity.LatestBalance(history), nil
}

// --- Category ---

type categoriesResponse struct {
	Categories []entity.Category `json:"categories"`
}

func (r *APIRepositoryImpl) GetCategories(ctx context.Context, token string, userID entity.UserID) ([]entity.Category, error) {
	return r.listCategories(ctx, "/category", token, userID)
}

func (r *APIRepositoryImpl) GetCustomCategories(ctx context.Context, token string) ([]entity.Category, error) {
	return r.listCategories(ctx, "/category/custom", token, "")
}

func (r *APIRepositoryImpl) listCategories(ctx context.Context, path, token string, userID entity.UserID) ([]entity.Category, error) {
	var out categoriesResponse
	_, err := r.do(ctx, request{method: http.MethodGet, path: path, token: token, userID: userID, decoded: &out})
	if err != nil {
		return nil, err
	}
	if out.Categories == nil {
		return []entity.Category{}, nil
	}
	return out.Categories, nil
}

func (r *APIRepositoryImpl) CreateCategory(ctx context.Context, token string, in entity.CategoryInput) error {
	_, err := r.do(ctx, request{method: http.MethodPost, path: "/category", token: token, body: in})
	return err
}

func (r *APIRepositoryImpl) DeleteCategory(ctx context.Context, token string, categoryID int64) error {
	_, err := r.do(ctx, request{
		method: http.MethodDelete,
		path:   "/category/" + strconv.FormatInt(categoryID, 10),
		token:  token,
	})
	return err
}

// --- Transaction ---

type transactionsResponse struct {
	Transactions []entity.Transaction `json:"transactions"`
}

func (r *APIRepositoryImpl) CreateTransaction(ctx context.Context, token string, in entity.TransactionInput) error {
	_, err := r.do(ctx, request{method: http.MethodPost, path: "/transaction", token: token, body: in})
	return err
}

func (r *APIRepositoryImpl) ListTransactions(ctx context.Context, token string, userID entity.UserID) ([]entity.Transaction, error) {
	var out transactionsResponse
	_, err := r.do(ctx, request{method: http.MethodGet, path: "/transaction", token: token, userID: userID, decoded: &out})
	if err != nil {
		return nil, err
	}
	if out.Transactions == nil {
		return []entity.Transaction{}, nil
	}
	return out.Transactions, nil
}

func (r *APIRepositoryImpl) UpdateTransaction(ctx context.Context, token string, transactionID int64, patch entity.TransactionPatch) error {
	_, err := r.do(ctx, request{
		method: http.MethodPatch,
		path:   "/transaction/" + strconv.FormatInt(transactionID, 10),
		token:  token,
		body:   patch,
	})
	return err
}

func (r *APIRepositoryImpl) DeleteTransaction(ctx context.Context, token string, transactionID int64) error {
	_, err := r.do(ctx, request{
		method: http.MethodDelete,
		path:   "/transaction/" + strconv.FormatInt(transactionID, 10),
		token:  token,
	})
	return err
}
