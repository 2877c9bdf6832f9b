package cli

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/api"
	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/api/apitest"
	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/config"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConsole struct {
	mu    sync.Mutex
	lines []string
}

func (c *recordingConsole) add(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, line)
}

func (c *recordingConsole) Output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

func (c *recordingConsole) Print(a ...interface{})                 { c.add(fmt.Sprint(a...)) }
func (c *recordingConsole) Printf(format string, a ...interface{}) { c.add(fmt.Sprintf(format, a...)) }
func (c *recordingConsole) Println(a ...interface{})               { c.add(fmt.Sprint(a...)) }
func (c *recordingConsole) LogInfo(format string, a ...interface{}) {
	c.add("INFO " + fmt.Sprintf(format, a...))
}
func (c *recordingConsole) LogWarning(format string, a ...interface{}) {
	c.add("WARN " + fmt.Sprintf(format, a...))
}
func (c *recordingConsole) LogError(format string, a ...interface{}) {
	c.add("ERROR " + fmt.Sprintf(format, a...))
}
func (c *recordingConsole) LogSuccess(format string, a ...interface{}) {
	c.add("OK " + fmt.Sprintf(format, a...))
}
func (c *recordingConsole) Status(string) types.StatusHandle { return noopStatus{} }
func (c *recordingConsole) CreateTable() types.TableInterface {
	return &textTable{}
}
func (c *recordingConsole) DisplayBalanceHistory(title string, points []types.SeriesPoint) {
	c.add(fmt.Sprintf("%s (%d points)", title, len(points)))
}

type noopStatus struct{}

func (noopStatus) Update(string) {}
func (noopStatus) Stop()         {}

type textTable struct {
	rows [][]string
}

func (t *textTable) AddColumn(name string, _ ...interface{}) {}

func (t *textTable) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, row)
}

func (t *textTable) Render() string {
	lines := make([]string, len(t.rows))
	for i, row := range t.rows {
		lines[i] = strings.Join(row, " | ")
	}
	return strings.Join(lines, "\n")
}

type harness struct {
	srv     *apitest.Server
	stateDB string
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddUser("ada@finly.click", "secret", "Ada", "Byron")
	dir := t.TempDir()
	return &harness{srv: srv, stateDB: filepath.Join(dir, "state.db"), dir: dir}
}

// run executes one command line against the fake backend with a fresh app,
// like a new process sharing the same state database.
func (h *harness) run(t *testing.T, stdin string, args ...string) (*recordingConsole, error) {
	t.Helper()
	console := &recordingConsole{}

	app := NewCLIApp("0.0.0-dev")
	app.SetConfigRepository(config.NewConfigRepository(filepath.Join(h.dir, "missing.env")))
	app.SetServicesFactory(func(cfg *types.Config) (*Services, error) {
		return NewServices(cfg, console)
	})

	full := append([]string{"--api-url", h.srv.URL, "--state-db", h.stateDB}, args...)
	app.rootCmd.SetArgs(full)
	app.rootCmd.SetIn(strings.NewReader(stdin))
	app.rootCmd.SetOut(&strings.Builder{})

	err := app.ExecuteContext(t.Context())
	return console, err
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	_, err := h.run(t, "", "login", "--email", "ada@finly.click", "--password", "secret")
	require.NoError(t, err)
}

func TestLoginAndWhoami(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "login", "--email", "ada@finly.click", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "OK Logged in as ada@finly.click")

	out, err = h.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "Ada Byron | ada@finly.click")
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "ada@finly.click\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "OK Logged in as ada@finly.click")

	_, err = h.run(t, "secret\n", "login", "--email", "ada@finly.click")
	require.NoError(t, err)

	_, err = h.run(t, "", "login", "--email", "ada@finly.click")
	assert.ErrorIs(t, err, io.EOF)
}

func TestLoginWithWrongPassword(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "login", "--email", "ada@finly.click", "--password", "nope")
	assert.ErrorIs(t, err, types.ErrInvalidCredentials)
}

func TestDashboardRequiresLogin(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "", "dashboard")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out.Output(), "ERROR Please log in to view your budget.")
}

func TestWhoamiRequiresLogin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "", "whoami")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
}

func TestDashboardWithoutBudget(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, err := h.run(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "Welcome, Ada Byron")
	assert.Contains(t, out.Output(), "You don't have a budget yet")
}

func TestBudgetAndTransactionFlow(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, err := h.run(t, "", "budget", "create", "--currency", "eur", "--amount", "100")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "OK Budget created in EUR")

	out, err = h.run(t, "", "tx", "add", "--amount", "12.5", "--category", "1", "--note", "lunch")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "OK Expense of 12.50 recorded")

	out, err = h.run(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "87.50")
	assert.Contains(t, out.Output(), "Balance History (2 points)")
	assert.Contains(t, out.Output(), "lunch")

	client := api.NewAPIRepository(h.srv.URL, 5*time.Second, false)
	txs, err := client.ListTransactions(t.Context(), h.srv.TokenFor("ada@finly.click"), "")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	id := fmt.Sprintf("%d", txs[0].ID)

	_, err = h.run(t, "", "tx", "edit", id, "--note", "dinner")
	require.NoError(t, err)

	out, err = h.run(t, "", "tx", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "dinner")

	_, err = h.run(t, "", "tx", "delete", id)
	require.NoError(t, err)

	out, err = h.run(t, "", "tx", "delete", id)
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out.Output(), "ERROR transaction not found")
}

func TestTransactionAddRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, err := h.run(t, "", "tx", "add", "--amount", "abc", "--category", "1")
	assert.EqualError(t, err, `invalid amount "abc"`)

	_, err = h.run(t, "", "tx", "add", "--amount", "1", "--category", "1", "--type", "transfer")
	assert.Error(t, err)

	out, err := h.run(t, "", "tx", "add", "--amount", "1", "--category", "1")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out.Output(), "no budget found")
	assert.Equal(t, 0, h.srv.Count("POST", "/transaction"))
}

func TestCategoryCommands(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	_, err := h.run(t, "", "category", "add", "Books", "and", "Comics")
	require.NoError(t, err)

	out, err := h.run(t, "", "category", "list", "--custom")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "Books and Comics")
	assert.NotContains(t, out.Output(), "Food")

	out, err = h.run(t, "", "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "Food")

	_, err = h.run(t, "", "category", "delete", "x")
	assert.EqualError(t, err, `invalid id "x"`)
}

func TestExportCommand(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	_, err := h.run(t, "", "budget", "create", "--currency", "USD", "--amount", "10")
	require.NoError(t, err)

	reports := filepath.Join(h.dir, "reports")
	out, err := h.run(t, "", "export", "--report-name", "march", "--report-type", "csv,pdf", "--dir", reports)
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "Successfully exported to CSV")

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLogoutEndsSession(t *testing.T) {
	h := newHarness(t)
	h.login(t)

	out, err := h.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out.Output(), "OK Logged out.")

	_, err = h.run(t, "", "whoami")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
}

func TestExpiredSessionIsReported(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.srv.Fail("POST", "/auth/me", 401, "token expired")

	out, err := h.run(t, "", "dashboard")
	assert.ErrorIs(t, err, ErrReported)
	assert.Contains(t, out.Output(), "WARN "+types.ErrSessionExpired.Error())
}

func TestConfigFile(t *testing.T) {
	h := newHarness(t)
	cfgPath := filepath.Join(h.dir, "finly.toml")
	content := fmt.Sprintf("api_url = %q\nstate_db = %q\npage_size = 2\n", h.srv.URL, h.stateDB)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	console := &recordingConsole{}
	app := NewCLIApp("0.0.0-dev")
	app.SetConfigRepository(config.NewConfigRepository(filepath.Join(h.dir, "missing.env")))
	app.SetServicesFactory(func(cfg *types.Config) (*Services, error) {
		assert.Equal(t, 2, cfg.PageSize)
		return NewServices(cfg, console)
	})
	app.rootCmd.SetArgs([]string{"-C", cfgPath, "login", "--email", "ada@finly.click", "--password", "secret"})

	require.NoError(t, app.ExecuteContext(t.Context()))
	assert.Equal(t, 1, h.srv.Count("POST", "/auth/login"))
}

func TestDashboardAnnouncesNewRelease(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	releases := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "v1.4.0"}`))
	}))
	t.Cleanup(releases.Close)
	t.Setenv(config.EnvReleaseURL, releases.URL)

	run := func(current string) string {
		console := &recordingConsole{}
		app := NewCLIApp(current)
		app.releaseWait = 5 * time.Second
		app.SetConfigRepository(config.NewConfigRepository(filepath.Join(h.dir, "missing.env")))
		app.SetServicesFactory(func(cfg *types.Config) (*Services, error) {
			return NewServices(cfg, console)
		})
		app.rootCmd.SetArgs([]string{"--api-url", h.srv.URL, "--state-db", h.stateDB, "dashboard"})
		require.NoError(t, app.ExecuteContext(t.Context()))
		return console.Output()
	}

	assert.Contains(t, run("1.3.9"), "WARN A new version of Finly Dashboard is available: 1.4.0")
	assert.NotContains(t, run("1.4.0"), "A new version")
}

func TestParseHelpers(t *testing.T) {
	id, err := parseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = parseID("0")
	assert.Error(t, err)

	amount, err := parseAmount("12.50")
	require.NoError(t, err)
	assert.Equal(t, "12.5", amount.String())
}
