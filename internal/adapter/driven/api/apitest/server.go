// Package apitest provides an in-memory Finly backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Request is a request recorded by the fake backend.
type Request struct {
	Method string
	Path   string
	Header http.Header
}

type user struct {
	entity.User
	password string
}

type failure struct {
	status  int
	message string
}

// Server is an httptest server implementing the Finly REST API in memory.
type Server struct {
	*httptest.Server

	// Now stamps history entries and transactions.
	Now func() time.Time

	mu           sync.Mutex
	nextID       int64
	users        map[string]*user
	tokens       map[string]string
	budgets      map[string]*entity.Budget
	history      map[int64][]entity.BudgetHistoryEntry
	categories   []entity.Category
	custom       map[string][]entity.Category
	transactions map[int64]entity.Transaction
	owners       map[int64]string
	failures     map[string]failure
	requests     []Request
}

// NewServer starts a backend seeded with three system categories (ids 1-3).
func NewServer() *Server {
	s := &Server{
		Now:          time.Now,
		users:        map[string]*user{},
		tokens:       map[string]string{},
		budgets:      map[string]*entity.Budget{},
		history:      map[int64][]entity.BudgetHistoryEntry{},
		custom:       map[string][]entity.Category{},
		transactions: map[int64]entity.Transaction{},
		owners:       map[int64]string{},
		failures:     map[string]failure{},
	}
	for _, name := range []string{"Food", "Transport", "Salary"} {
		s.categories = append(s.categories, entity.Category{ID: s.id(), Name: name})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/me", s.authed(s.me))
	mux.HandleFunc("POST /auth/logout", s.authed(s.logout))
	mux.HandleFunc("POST /auth/refresh", s.authed(s.refresh))
	mux.HandleFunc("POST /budget", s.authed(s.createBudget))
	mux.HandleFunc("GET /budget", s.authed(s.getBudget))
	mux.HandleFunc("GET /budget/{id}/history", s.authed(s.getHistory))
	mux.HandleFunc("GET /category", s.authed(s.listCategories))
	mux.HandleFunc("GET /category/custom", s.authed(s.listCustomCategories))
	mux.HandleFunc("POST /category", s.authed(s.createCategory))
	mux.HandleFunc("DELETE /category/{id}", s.authed(s.deleteCategory))
	mux.HandleFunc("POST /transaction", s.authed(s.createTransaction))
	mux.HandleFunc("GET /transaction", s.authed(s.listTransactions))
	mux.HandleFunc("PATCH /transaction/{id}", s.authed(s.updateTransaction))
	mux.HandleFunc("DELETE /transaction/{id}", s.authed(s.deleteTransaction))

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser registers a user directly and returns it.
func (s *Server) AddUser(email, password, firstName, lastName string) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{
		User:     entity.User{ID: entity.UserID(strconv.FormatInt(s.id(), 10)), Email: email, FirstName: firstName, LastName: lastName},
		password: password,
	}
	s.users[email] = u
	return u.User
}

// TokenFor issues a valid token for an existing user.
func (s *Server) TokenFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(email)
}

func (s *Server) issue(email string) string {
	token := fmt.Sprintf("token-%d", s.id())
	s.tokens[token] = email
	return token
}

// Fail makes every following request to method+path answer with status.
// An empty message produces a body without a message field.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests hit method+path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Header: r.Header.Clone()})
		f, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if failing {
			if f.message == "" {
				w.WriteHeader(f.status)
				return
			}
			writeError(w, f.status, f.message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type handler func(w http.ResponseWriter, r *http.Request, email string)

func (s *Server) authed(h handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		email, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		h(w, r, email)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds entity.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[creds.Email]
	if !ok || u.password != creds.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": s.issue(creds.Email)})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in entity.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[in.Email]; exists {
		writeError(w, http.StatusConflict, "user with this email already exists")
		return
	}
	s.users[in.Email] = &user{
		User:     entity.User{ID: entity.UserID(strconv.FormatInt(s.id(), 10)), Email: in.Email, FirstName: in.FirstName, LastName: in.LastName},
		password: in.Password,
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": s.issue(in.Email)})
}

func (s *Server) me(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	u := s.users[email]
	s.mu.Unlock()
	id, _ := strconv.ParseInt(string(u.ID), 10, 64)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         id,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, _ string) {
	s.mu.Lock()
	delete(s.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	writeJSON(w, http.StatusOK, map[string]string{"token": s.issue(email)})
}

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request, email string) {
	var in entity.BudgetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.budgets[email]; exists {
		writeError(w, http.StatusConflict, "budget already exists")
		return
	}
	b := &entity.Budget{ID: s.id(), Currency: in.Currency, Amount: in.Amount}
	s.budgets[email] = b
	s.history[b.ID] = []entity.BudgetHistoryEntry{{CreatedAt: s.Now().UTC(), Balance: in.Amount}}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) getBudget(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	b, ok := s.budgets[email]
	s.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request, email string) {
	id, ok := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	b, has := s.budgets[email]
	if !ok || !has || b.ID != id {
		writeError(w, http.StatusNotFound, "budget not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"budget_history": s.history[id]})
}

// appendBalance records a new history entry; callers hold s.mu.
func (s *Server) appendBalance(email string) {
	b, ok := s.budgets[email]
	if !ok {
		return
	}
	balance := b.Amount
	for id, tx := range s.transactions {
		if s.owners[id] == email {
			balance = balance.Add(tx.Signed())
		}
	}
	s.history[b.ID] = append(s.history[b.ID], entity.BudgetHistoryEntry{CreatedAt: s.Now().UTC(), Balance: balance})
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append(append([]entity.Category{}, s.categories...), s.custom[email]...)
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": all})
}

func (s *Server) listCustomCategories(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": append([]entity.Category{}, s.custom[email]...)})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request, email string) {
	var in entity.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "category name is required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := entity.Category{ID: s.id(), Name: in.Name, IsUserCategory: true}
	s.custom[email] = append(s.custom[email], c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request, email string) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	cats := s.custom[email]
	for i, c := range cats {
		if c.ID == id {
			s.custom[email] = append(cats[:i:i], cats[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "category not found")
}

// knownCategory checks system and custom categories; callers hold s.mu.
func (s *Server) knownCategory(email string, id int64) bool {
	for _, c := range s.categories {
		if c.ID == id {
			return true
		}
	}
	for _, c := range s.custom[email] {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request, email string) {
	var in entity.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.budgets[email]; !ok || b.ID != in.BudgetID {
		writeError(w, http.StatusBadRequest, "budget does not belong to user")
		return
	}
	if !s.knownCategory(email, in.CategoryID) {
		writeError(w, http.StatusBadRequest, "category does not exist")
		return
	}
	tx := entity.Transaction{
		ID:         s.id(),
		Amount:     in.Amount,
		Type:       in.Type,
		CategoryID: in.CategoryID,
		BudgetID:   in.BudgetID,
		Note:       in.Note,
		CreatedAt:  s.Now().UTC(),
	}
	s.transactions[tx.ID] = tx
	s.owners[tx.ID] = email
	s.appendBalance(email)
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) listTransactions(w http.ResponseWriter, _ *http.Request, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Transaction{}
	for id, tx := range s.transactions {
		if s.owners[id] == email {
			out = append(out, tx)
		}
	}
	// newest first, like the backend
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": out})
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, email string) {
	id, _ := pathID(r)
	var patch entity.TransactionPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok || s.owners[id] != email {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.CategoryID != nil {
		if !s.knownCategory(email, *patch.CategoryID) {
			writeError(w, http.StatusBadRequest, "category does not exist")
			return
		}
		tx.CategoryID = *patch.CategoryID
	}
	if patch.Note != nil {
		tx.Note = *patch.Note
	}
	s.transactions[id] = tx
	s.appendBalance(email)
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, email string) {
	id, _ := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok || s.owners[id] != email {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	delete(s.transactions, id)
	delete(s.owners, id)
	s.appendBalance(email)
	w.WriteHeader(http.StatusNoContent)
}

// Balance returns the latest recorded balance of the user's budget.
func (s *Server) Balance(email string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[email]
	if !ok {
		return decimal.Zero
	}
	return entity.LatestBalance(s.history[b.ID])
}
