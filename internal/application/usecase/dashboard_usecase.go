package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/domain/repository"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCategoryName = errors.New("category name is required")
	ErrNothingToUpdate   = errors.New("nothing to update: pass at least one field to change")
	ErrBudgetMismatch    = errors.New("transaction budget does not match the loaded budget")
)

// DashboardUseCase owns the dashboard state and sequences every fetch and
// mutation against the backend. Mutations never update state optimistically:
// each one is followed by a refetch of the state it affects.
type DashboardUseCase struct {
	api        repository.BudgetAPI
	exportRepo repository.ExportRepository
	auth       *AuthUseCase
	console    types.ConsoleInterface
	notices    *Notices

	mu    sync.Mutex
	state entity.Dashboard
	// generations of in-flight fetches; a result whose generation is no
	// longer current is discarded instead of overwriting newer state.
	budgetGen     uint64
	categoriesGen uint64
}

// NewDashboardUseCase creates a new dashboard use case.
func NewDashboardUseCase(
	api repository.BudgetAPI,
	exportRepo repository.ExportRepository,
	auth *AuthUseCase,
	console types.ConsoleInterface,
	notices *Notices,
) *DashboardUseCase {
	return &DashboardUseCase{
		api:        api,
		exportRepo: exportRepo,
		auth:       auth,
		console:    console,
		notices:    notices,
	}
}

// Notices returns the notice list fed by failed operations.
func (uc *DashboardUseCase) Notices() *Notices {
	return uc.notices
}

// Dashboard returns a copy of the current state.
func (uc *DashboardUseCase) Dashboard() entity.Dashboard {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return copyDashboard(uc.state)
}

type budgetResult struct {
	failed         bool
	budget         *entity.Budget
	history        []entity.BudgetHistoryEntry
	historyOK      bool
	balance        decimal.Decimal
	balanceOK      bool
	transactions   []entity.Transaction
	transactionsOK bool
}

type categoriesResult struct {
	categories   []entity.Category
	categoriesOK bool
	custom       []entity.Category
	customOK     bool
}

// LoadDashboard fetches user info, budget and categories concurrently, then,
// when a budget exists, its history, balance and transactions in sequence.
// A missing budget is not an error: the state is cleared and NeedsBudget set.
func (uc *DashboardUseCase) LoadDashboard(ctx context.Context) (entity.Dashboard, error) {
	token, err := uc.requireToken()
	if err != nil {
		return entity.Dashboard{}, err
	}

	uc.mu.Lock()
	uc.budgetGen++
	budgetGen := uc.budgetGen
	uc.categoriesGen++
	categoriesGen := uc.categoriesGen
	uc.mu.Unlock()

	userID := uc.auth.Session().UserID

	var (
		wg       sync.WaitGroup
		budget   budgetResult
		cats     categoriesResult
		user     *entity.User
		fetchErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		u, err := uc.api.GetUserInfo(ctx, token)
		if err != nil {
			fetchErr = err
			uc.report(err, "Failed to load user info.")
			return
		}
		user = &u
		if err := uc.auth.RememberUser(u); err != nil {
			uc.console.LogWarning("Could not persist session: %s", err)
		}
		cats = uc.fetchCategories(ctx, token, u.ID)
	}()
	go func() {
		defer wg.Done()
		budget = uc.fetchBudget(ctx, token, userID)
	}()
	wg.Wait()

	uc.mu.Lock()
	if user != nil && categoriesGen == uc.categoriesGen {
		uc.state.User = user
	}
	uc.mu.Unlock()
	if fetchErr == nil {
		uc.applyCategories(categoriesGen, cats)
	}
	uc.applyBudget(budgetGen, budget)

	if uc.auth.State() == entity.SessionAnonymous {
		return uc.Dashboard(), types.ErrSessionExpired
	}
	return uc.Dashboard(), nil
}

// ParseBudgetAmount parses the amount typed by the user; text that is not a
// number becomes zero.
func ParseBudgetAmount(text string) decimal.Decimal {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// CreateBudget creates the budget and reloads the whole dashboard.
func (uc *DashboardUseCase) CreateBudget(ctx context.Context, currency, amountText string) (entity.Dashboard, error) {
	token, err := uc.requireToken()
	if err != nil {
		return entity.Dashboard{}, err
	}

	code, err := entity.ParseCurrency(currency)
	if err != nil {
		return uc.Dashboard(), uc.fail(err, "Failed to create budget.")
	}
	in := entity.BudgetInput{Currency: code, Amount: ParseBudgetAmount(amountText)}
	if err := in.Validate(); err != nil {
		return uc.Dashboard(), uc.fail(err, "Failed to create budget.")
	}

	if _, err := uc.api.CreateBudget(ctx, token, in); err != nil {
		return uc.Dashboard(), uc.fail(err, "Failed to create budget.")
	}
	return uc.LoadDashboard(ctx)
}

// CreateTransaction records a transaction against the loaded budget. An
// input without budget id gets the loaded one; any other id is rejected.
func (uc *DashboardUseCase) CreateTransaction(ctx context.Context, in entity.TransactionInput) error {
	token, err := uc.requireToken()
	if err != nil {
		return err
	}

	var loaded int64
	uc.mu.Lock()
	if uc.state.Budget != nil {
		loaded = uc.state.Budget.ID
	}
	uc.mu.Unlock()
	switch {
	case loaded == 0:
		return uc.fail(types.ErrNoBudget, "Failed to create transaction.")
	case in.BudgetID == 0:
		in.BudgetID = loaded
	case in.BudgetID != loaded:
		return uc.fail(ErrBudgetMismatch, "Failed to create transaction.")
	}
	if err := in.Validate(); err != nil {
		return uc.fail(err, "Failed to create transaction.")
	}

	if err := uc.api.CreateTransaction(ctx, token, in); err != nil {
		return uc.fail(err, "Failed to create transaction.")
	}
	uc.refreshBudget(ctx, token)
	return nil
}

// UpdateTransaction sends a partial update and refetches the budget state.
func (uc *DashboardUseCase) UpdateTransaction(ctx context.Context, id int64, patch entity.TransactionPatch) error {
	token, err := uc.requireToken()
	if err != nil {
		return err
	}
	if patch.Empty() {
		return uc.fail(ErrNothingToUpdate, "Failed to update transaction.")
	}
	if err := patch.Validate(); err != nil {
		return uc.fail(err, "Failed to update transaction.")
	}

	if err := uc.api.UpdateTransaction(ctx, token, id, patch); err != nil {
		return uc.fail(err, "Failed to update transaction.")
	}
	uc.refreshBudget(ctx, token)
	return nil
}

// DeleteTransaction deletes a transaction; deleting it again reports the
// backend's not-found error.
func (uc *DashboardUseCase) DeleteTransaction(ctx context.Context, id int64) error {
	token, err := uc.requireToken()
	if err != nil {
		return err
	}
	if err := uc.api.DeleteTransaction(ctx, token, id); err != nil {
		return uc.fail(err, "Failed to delete transaction.")
	}
	uc.refreshBudget(ctx, token)
	return nil
}

// CreateCategory creates a custom category and refetches categories only.
func (uc *DashboardUseCase) CreateCategory(ctx context.Context, name string) error {
	token, err := uc.requireToken()
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return uc.fail(ErrEmptyCategoryName, "Failed to create category.")
	}
	if err := uc.api.CreateCategory(ctx, token, entity.CategoryInput{Name: name}); err != nil {
		return uc.fail(err, "Failed to create category.")
	}
	uc.refreshCategories(ctx, token)
	return nil
}

// DeleteCategory deletes a custom category and refetches categories only.
func (uc *DashboardUseCase) DeleteCategory(ctx context.Context, id int64) error {
	token, err := uc.requireToken()
	if err != nil {
		return err
	}
	if err := uc.api.DeleteCategory(ctx, token, id); err != nil {
		return uc.fail(err, "Failed to delete category.")
	}
	uc.refreshCategories(ctx, token)
	return nil
}

// --- fetches ---

func (uc *DashboardUseCase) fetchBudget(ctx context.Context, token string, userID entity.UserID) budgetResult {
	var res budgetResult

	budget, err := uc.api.GetBudget(ctx, token)
	if err != nil {
		uc.report(err, "Failed to load budget.")
		res.failed = true
		return res
	}
	res.budget = budget
	if budget == nil {
		return res
	}

	history, err := uc.api.GetBudgetHistory(ctx, token, budget.ID)
	if err != nil {
		uc.report(err, "Failed to load budget history.")
	} else {
		res.history, res.historyOK = history, true
	}

	balance, err := uc.api.GetBalance(ctx, token, budget.ID)
	if err != nil {
		uc.report(err, "Failed to load balance.")
	} else {
		res.balance, res.balanceOK = balance, true
	}

	transactions, err := uc.api.ListTransactions(ctx, token, userID)
	if err != nil {
		uc.report(err, "Failed to load transactions.")
	} else {
		res.transactions, res.transactionsOK = transactions, true
	}
	return res
}

func (uc *DashboardUseCase) fetchCategories(ctx context.Context, token string, userID entity.UserID) categoriesResult {
	var (
		res  categoriesResult
		wg   sync.WaitGroup
		errs [2]error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		res.categories, errs[0] = uc.api.GetCategories(ctx, token, userID)
	}()
	go func() {
		defer wg.Done()
		res.custom, errs[1] = uc.api.GetCustomCategories(ctx, token)
	}()
	wg.Wait()

	// um único aviso por carga
	for _, err := range errs {
		if err != nil {
			uc.report(err, "Failed to load categories.")
			break
		}
	}
	res.categoriesOK = errs[0] == nil
	res.customOK = errs[1] == nil
	return res
}

func (uc *DashboardUseCase) refreshBudget(ctx context.Context, token string) {
	uc.mu.Lock()
	uc.budgetGen++
	gen := uc.budgetGen
	uc.mu.Unlock()

	uc.applyBudget(gen, uc.fetchBudget(ctx, token, uc.auth.Session().UserID))
}

func (uc *DashboardUseCase) refreshCategories(ctx context.Context, token string) {
	uc.mu.Lock()
	uc.categoriesGen++
	gen := uc.categoriesGen
	uc.mu.Unlock()

	uc.applyCategories(gen, uc.fetchCategories(ctx, token, uc.auth.Session().UserID))
}

// applyBudget stores a budget fetch result unless a newer fetch started since.
func (uc *DashboardUseCase) applyBudget(gen uint64, res budgetResult) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if gen != uc.budgetGen {
		return false
	}

	clearDependents := func() {
		uc.state.Balance = nil
		uc.state.History = []entity.BudgetHistoryEntry{}
		uc.state.Series = []entity.ChartPoint{}
		uc.state.Transactions = []entity.Transaction{}
	}

	switch {
	case res.failed:
		uc.state.Budget = nil
		uc.state.NeedsBudget = false
		clearDependents()
	case res.budget == nil:
		uc.state.Budget = nil
		uc.state.NeedsBudget = true
		clearDependents()
	default:
		if uc.state.Budget == nil || uc.state.Budget.ID != res.budget.ID {
			clearDependents()
		}
		budget := *res.budget
		uc.state.Budget = &budget
		uc.state.NeedsBudget = false
		if res.historyOK {
			uc.state.History = res.history
			uc.state.Series = BuildSeries(res.history)
		}
		if res.balanceOK {
			balance := res.balance
			uc.state.Balance = &balance
		}
		if res.transactionsOK {
			uc.state.Transactions = res.transactions
		}
	}
	return true
}

// applyCategories stores a categories fetch result unless a newer fetch started since.
func (uc *DashboardUseCase) applyCategories(gen uint64, res categoriesResult) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if gen != uc.categoriesGen {
		return false
	}
	if res.categoriesOK {
		uc.state.Categories = res.categories
	}
	if res.customOK {
		uc.state.CustomCategories = res.custom
	}
	return true
}

// --- error policy ---

func (uc *DashboardUseCase) requireToken() (string, error) {
	token := uc.auth.Token()
	if token == "" {
		uc.notices.Add("Please log in to view your budget.")
		return "", types.ErrNotAuthenticated
	}
	return token, nil
}

// report turns a failure into a notice. A 401 ends the session once and is
// reported as an expired session.
func (uc *DashboardUseCase) report(err error, fallback string) {
	if errors.Is(err, types.ErrUnauthorized) {
		if uc.auth.HandleError(err) {
			uc.notices.Add(types.ErrSessionExpired.Error())
		}
		return
	}
	uc.notices.Add(UserMessage(err, fallback))
}

func (uc *DashboardUseCase) fail(err error, fallback string) error {
	uc.report(err, fallback)
	if errors.Is(err, types.ErrUnauthorized) {
		return types.ErrSessionExpired
	}
	return err
}

func copyDashboard(d entity.Dashboard) entity.Dashboard {
	out := d
	if d.User != nil {
		u := *d.User
		out.User = &u
	}
	if d.Budget != nil {
		b := *d.Budget
		out.Budget = &b
	}
	if d.Balance != nil {
		v := *d.Balance
		out.Balance = &v
	}
	out.History = append([]entity.BudgetHistoryEntry{}, d.History...)
	out.Series = append([]entity.ChartPoint{}, d.Series...)
	out.Categories = append([]entity.Category{}, d.Categories...)
	out.CustomCategories = append([]entity.Category{}, d.CustomCategories...)
	out.Transactions = append([]entity.Transaction{}, d.Transactions...)
	return out
}
