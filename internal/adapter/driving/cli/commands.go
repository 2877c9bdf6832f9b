package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/diillson/finly-dashboard-go/internal/domain/entity"
	"github.com/diillson/finly-dashboard-go/internal/shared/types"
	"github.com/diillson/finly-dashboard-go/pkg/version"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// --- Autenticação ---

func (app *CLIApp) newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Log in to the Finly backend",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipRestore: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			var err error
			if email == "" {
				if email, err = app.prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = app.promptPassword(cmd, "Password: "); err != nil {
					return err
				}
			}

			if err := app.services.Auth.Login(cmd.Context(), strings.TrimSpace(email), password); err != nil {
				return err
			}
			app.services.Console.LogSuccess("Logged in as %s", strings.TrimSpace(email))
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email (prompted when omitted)")
	cmd.Flags().String("password", "", "Account password (prompted when omitted)")
	return cmd
}

func (app *CLIApp) newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create a Finly account",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipRestore: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			password, _ := cmd.Flags().GetString("password")

			if password == "" {
				var err error
				if password, err = app.promptPassword(cmd, "Password: "); err != nil {
					return err
				}
			}
			if strings.TrimSpace(password) == "" {
				return fmt.Errorf("password cannot be empty")
			}

			in := entity.RegisterInput{
				Email:     strings.TrimSpace(email),
				FirstName: strings.TrimSpace(firstName),
				LastName:  strings.TrimSpace(lastName),
				Password:  password,
			}
			if err := app.services.Auth.Register(cmd.Context(), in); err != nil {
				return err
			}
			app.services.Console.LogSuccess("Account created for %s", in.Email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("first-name", "", "First name")
	cmd.Flags().String("last-name", "", "Last name")
	cmd.Flags().String("password", "", "Account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func (app *CLIApp) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.services.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			app.services.Console.LogSuccess("Logged out.")
			return nil
		},
	}
}

func (app *CLIApp) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := app.services.Auth.User()
			if user == nil {
				return types.ErrNotAuthenticated
			}
			table := app.services.Console.CreateTable()
			table.AddColumn("ID")
			table.AddColumn("Name")
			table.AddColumn("Email")
			table.AddRow(string(user.ID), user.FullName(), user.Email)
			app.services.Console.Print(table.Render())
			return nil
		},
	}
}

func (app *CLIApp) newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.services.Auth.Refresh(cmd.Context()); err != nil {
				return err
			}
			app.services.Console.LogSuccess("Session refreshed.")
			return nil
		},
	}
}

// --- Dashboard ---

func (app *CLIApp) newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show balance, balance history and recent transactions",
		Args:  cobra.NoArgs,
		RunE:  app.runDashboard,
	}
	addListFlags(cmd)
	return cmd
}

// runDashboard é o ponto de entrada principal: carrega e exibe o dashboard.
func (app *CLIApp) runDashboard(cmd *cobra.Command, _ []string) error {
	displayWelcomeBanner(version.Current().String())

	// Verifica a versão mais recente enquanto o dashboard carrega
	releases := make(chan *version.Release, 1)
	go func() {
		release, err := version.CheckLatest(cmd.Context(), nil, app.config.ReleaseURL, app.version)
		if err != nil {
			release = nil
		}
		releases <- release
	}()

	status := app.services.Console.Status("Loading your budget...")
	_, err := app.services.Dashboard.LoadDashboard(cmd.Context())
	status.Stop()

	if err := app.reported(err); err != nil {
		return err
	}
	app.services.Dashboard.RenderDashboard(app.pageSize())
	app.announceRelease(releases)
	return nil
}

// announceRelease avisa sobre uma versão nova se a verificação terminou a tempo.
func (app *CLIApp) announceRelease(releases <-chan *version.Release) {
	select {
	case release := <-releases:
		if release != nil && release.Newer {
			app.services.Console.LogWarning("A new version of Finly Dashboard is available: %s", release.Version)
			app.services.Console.LogInfo("Please update using: go install github.com/diillson/finly-dashboard-go/cmd/finly@latest")
		}
	case <-time.After(app.releaseWait):
	}
}

func (app *CLIApp) newBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Manage the budget",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create the budget with a currency and a starting amount",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			currency, _ := cmd.Flags().GetString("currency")
			amount, _ := cmd.Flags().GetString("amount")

			d, err := app.services.Dashboard.CreateBudget(cmd.Context(), currency, amount)
			if err := app.reported(err); err != nil {
				return err
			}
			if d.Budget != nil {
				app.services.Console.LogSuccess("Budget created in %s", d.Budget.Currency)
			}
			app.services.Dashboard.RenderDashboard(app.config.PageSize)
			return nil
		},
	}
	create.Flags().String("currency", string(entity.CurrencyUSD), "Budget currency: USD, EUR or UAH")
	create.Flags().String("amount", "0", "Starting amount")

	cmd.AddCommand(create)
	return cmd
}

// --- Transações ---

func (app *CLIApp) newTransactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Manage transactions",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Record an income or an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			typeText, _ := cmd.Flags().GetString("type")
			amountText, _ := cmd.Flags().GetString("amount")
			categoryID, _ := cmd.Flags().GetInt64("category")
			note, _ := cmd.Flags().GetString("note")

			txType, err := entity.ParseTransactionType(typeText)
			if err != nil {
				return err
			}
			amount, err := parseAmount(amountText)
			if err != nil {
				return err
			}
			in := entity.TransactionInput{Amount: amount, Type: txType, CategoryID: categoryID, Note: note}

			// o orçamento carregado fornece o budget_id
			if _, err := app.services.Dashboard.LoadDashboard(cmd.Context()); err != nil {
				return app.reported(err)
			}
			if err := app.services.Dashboard.CreateTransaction(cmd.Context(), in); err != nil {
				return app.reported(err)
			}
			app.services.Console.LogSuccess("%s of %s recorded", txType.Label(), amount.StringFixed(2))
			app.services.Dashboard.RenderDashboard(app.config.PageSize)
			return app.reported(nil)
		},
	}
	add.Flags().String("type", string(entity.Withdrawal), "Transaction type: withdrawal (expense) or deposit (income)")
	add.Flags().String("amount", "", "Amount, greater than zero")
	add.Flags().Int64("category", 0, "Category id (see `finly category list`)")
	add.Flags().String("note", "", "Optional note")
	_ = add.MarkFlagRequired("amount")
	_ = add.MarkFlagRequired("category")

	edit := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch entity.TransactionPatch
			flags := cmd.Flags()
			if flags.Changed("amount") {
				text, _ := flags.GetString("amount")
				amount, err := parseAmount(text)
				if err != nil {
					return err
				}
				patch.Amount = &amount
			}
			if flags.Changed("type") {
				text, _ := flags.GetString("type")
				txType, err := entity.ParseTransactionType(text)
				if err != nil {
					return err
				}
				patch.Type = &txType
			}
			if flags.Changed("category") {
				categoryID, _ := flags.GetInt64("category")
				patch.CategoryID = &categoryID
			}
			if flags.Changed("note") {
				note, _ := flags.GetString("note")
				patch.Note = &note
			}

			if err := app.services.Dashboard.UpdateTransaction(cmd.Context(), id, patch); err != nil {
				return app.reported(err)
			}
			app.services.Console.LogSuccess("Transaction %d updated", id)
			return app.reported(nil)
		},
	}
	edit.Flags().String("amount", "", "New amount")
	edit.Flags().String("type", "", "New type: withdrawal or deposit")
	edit.Flags().Int64("category", 0, "New category id")
	edit.Flags().String("note", "", "New note")

	del := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.services.Dashboard.DeleteTransaction(cmd.Context(), id); err != nil {
				return app.reported(err)
			}
			app.services.Console.LogSuccess("Transaction %d deleted", id)
			return app.reported(nil)
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.services.Dashboard.LoadDashboard(cmd.Context()); err != nil {
				return app.reported(err)
			}
			if err := app.reported(nil); err != nil {
				return err
			}
			app.services.Dashboard.RenderTransactions(app.pageSize())
			return nil
		},
	}
	addListFlags(list)

	cmd.AddCommand(add, edit, del, list)
	return cmd
}

// --- Categorias ---

func (app *CLIApp) newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a custom category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if err := app.services.Dashboard.CreateCategory(cmd.Context(), name); err != nil {
				return app.reported(err)
			}
			app.services.Console.LogSuccess("Category %q created", strings.TrimSpace(name))
			app.services.Dashboard.RenderCategories(true)
			return app.reported(nil)
		},
	}

	del := &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a custom category",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.services.Dashboard.DeleteCategory(cmd.Context(), id); err != nil {
				return app.reported(err)
			}
			app.services.Console.LogSuccess("Category %d deleted", id)
			return app.reported(nil)
		},
	}

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.services.Dashboard.LoadDashboard(cmd.Context()); err != nil {
				return app.reported(err)
			}
			if err := app.reported(nil); err != nil {
				return err
			}
			app.services.Dashboard.RenderCategories(app.args.Custom)
			return nil
		},
	}
	list.Flags().Bool("custom", false, "Show only your custom categories")

	cmd.AddCommand(add, del, list)
	return cmd
}

// --- Exportação ---

func (app *CLIApp) newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dashboard to CSV, JSON or PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := app.services.Dashboard.LoadDashboard(cmd.Context()); err != nil {
				return app.reported(err)
			}
			if err := app.reported(nil); err != nil {
				return err
			}

			args := *app.args
			if args.Dir == "" {
				args.Dir = app.config.ReportDir
			}
			app.services.Dashboard.Export(&args)
			return nil
		},
	}
	cmd.Flags().StringP("report-name", "n", "finly_report", "Base name for the report file (without extension)")
	cmd.Flags().StringSliceP("report-type", "y", []string{"csv"}, "Report types: csv, json, pdf")
	cmd.Flags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	return cmd
}

// --- Funções Auxiliares ---

func parseID(text string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", text)
	}
	return id, nil
}

func parseAmount(text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", text)
	}
	return amount, nil
}
