package usecase

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/api"
	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/api/apitest"
	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/export"
	"github.com/diillson/finly-dashboard-go/internal/adapter/driven/session"
	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/domain/repository"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/stretchr/testify/require"
)

// recordingConsole keeps every line written through the console interface.
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
	return &recordingTable{}
}
func (c *recordingConsole) DisplayBalanceHistory(title string, points []types.SeriesPoint) {
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = fmt.Sprintf("%s=%.2f", p.Label, p.Value)
	}
	c.add(title + ": " + strings.Join(labels, " "))
}

type noopStatus struct{}

func (noopStatus) Update(string) {}
func (noopStatus) Stop()         {}

type recordingTable struct {
	columns []string
	rows    [][]string
}

func (t *recordingTable) AddColumn(name string, _ ...interface{}) {
	t.columns = append(t.columns, name)
}

func (t *recordingTable) AddRow(cells ...interface{}) {
	row := make([]string, len(cells))
	for i, cell := range cells {
		row[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, row)
}

func (t *recordingTable) Render() string {
	lines := []string{strings.Join(t.columns, " | ")}
	for _, row := range t.rows {
		lines = append(lines, strings.Join(row, " | "))
	}
	return strings.Join(lines, "\n")
}

type testEnv struct {
	srv       *apitest.Server
	api       repository.BudgetAPI
	sessions  repository.SessionRepository
	console   *recordingConsole
	auth      *AuthUseCase
	dashboard *DashboardUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, func(a repository.BudgetAPI) repository.BudgetAPI { return a })
}

// newTestEnvWith lets a test wrap the API client, e.g. to delay responses.
func newTestEnvWith(t *testing.T, wrap func(repository.BudgetAPI) repository.BudgetAPI) *testEnv {
	t.Helper()

	srv := apitest.NewServer()
	t.Cleanup(srv.Close)

	sessions, err := session.NewSessionRepository(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sessions.Close() })

	client := wrap(api.NewAPIRepository(srv.URL, 5*time.Second, true))
	console := &recordingConsole{}
	auth := NewAuthUseCase(client, sessions, console)
	dashboard := NewDashboardUseCase(client, export.NewExportRepository(), auth, console, NewNotices(0))

	return &testEnv{
		srv:       srv,
		api:       client,
		sessions:  sessions,
		console:   console,
		auth:      auth,
		dashboard: dashboard,
	}
}

// login registers a user on the backend and logs in with it.
func (e *testEnv) login(t *testing.T) entity.User {
	t.Helper()
	user := e.srv.AddUser("ada@finly.click", "secret", "Ada", "Byron")
	require.NoError(t, e.auth.Login(t.Context(), "ada@finly.click", "secret"))
	return user
}

func noticeMessages(n *Notices) []string {
	var out []string
	for _, notice := range n.Active() {
		out = append(out, notice.Message)
	}
	return out
}
