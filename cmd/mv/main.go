package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"mediavault/internal/app"
	"mediavault/internal/catalog"
	"mediavault/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. app.OpAddItems).
func newApp(cmd *cobra.Command, operation string, params map[string]string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	a, err := app.New(cmd.Context(), cfg, operation, app.Options{Verbose: verbose, Parameters: params})
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// closeApp reports a failed Close. The command itself already succeeded,
// so the error only goes to stderr.
func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

func currentUser(cmd *cobra.Command) string {
	user, _ := cmd.Flags().GetString("user")
	return user
}

// readPassphrase prompts on the terminal without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

func readNewPassphrase() (string, error) {
	first, err := readPassphrase("New passphrase: ")
	if err != nil {
		return "", err
	}
	second, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", fmt.Errorf("passphrases do not match")
	}
	return first, nil
}

func printItems(items []*catalog.Item) {
	if len(items) == 0 {
		fmt.Println("No items.")
		return
	}
	for _, item := range items {
		marker := " "
		if item.IsDirectory() {
			marker = "d"
		}
		fmt.Printf("%s %-9s %5d  %s\n", marker, item.Kind, item.Views, item.Path)
	}
}

func printTree(nodes []*catalog.TreeNode, depth int) {
	for _, n := range nodes {
		name := n.Name
		if depth == 0 {
			name = n.Path
		}
		if n.IsDirectory() {
			name += "/"
		}
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), name)
		printTree(n.Children, depth+1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "mv",
	Short:        "Permission-aware media catalog",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults.BaseDir)

		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Host ID: %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)
		fmt.Println("Run 'mv keys init' to enable encrypted snapshots.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		fmt.Printf("Search:     %t\n", cfg.Search.Enabled)
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		superuser, _ := cmd.Flags().GetBool("superuser")

		password, err := readNewPassphrase()
		if err != nil {
			return err
		}

		a, err := newApp(cmd, app.OpCreateUser, map[string]string{"username": args[0]})
		if err != nil {
			return err
		}
		defer closeApp(a)

		u, err := a.CreateUser(cmd.Context(), args[0], password, superuser)
		if err != nil {
			return fmt.Errorf("creating user: %w", err)
		}
		fmt.Printf("Created user %s (id %d)\n", u.Username, u.ID)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListUsers", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		users, err := a.ListUsers(cmd.Context())
		if err != nil {
			return err
		}
		for _, u := range users {
			role := ""
			if u.IsSuperuser {
				role = "  [superuser]"
			}
			fmt.Printf("#%d  %s%s\n", u.ID, u.Username, role)
		}
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add PATH",
	Short: "Add a file or directory tree to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, _ := cmd.Flags().GetString("policy")
		parent, _ := cmd.Flags().GetString("parent")

		a, err := newApp(cmd, app.OpAddItems, map[string]string{"path": args[0], "policy": policy, "parent": parent})
		if err != nil {
			return err
		}
		defer closeApp(a)

		count, err := a.AddItems(cmd.Context(), args[0], currentUser(cmd), policy, parent)
		return reportAdded(os.Stdout, count, err)
	},
}

// reportAdded prints the ingest count. Items added before a failure or an
// interrupt stay cataloged, so the count is printed in both cases.
func reportAdded(w io.Writer, count int, err error) error {
	if err != nil {
		fmt.Fprintf(w, "Added %d item(s) before stopping\n", count)
		return fmt.Errorf("adding items: %w", err)
	}
	fmt.Fprintf(w, "Added %d item(s)\n", count)
	return nil
}

var rmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Remove an item and its subtree from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, app.OpRemoveItems, map[string]string{"path": args[0]})
		if err != nil {
			return err
		}
		defer closeApp(a)

		count, err := a.RemoveItems(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("removing items: %w", err)
		}
		fmt.Printf("Removed %d item(s)\n", count)
		return nil
	},
}

// grant and revoke commands
var grantCmd = &cobra.Command{
	Use:   "grant PATH [USERNAME]",
	Short: "Grant access to an item (everyone when no user is given)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		admin, _ := cmd.Flags().GetBool("admin")

		username := ""
		if len(args) > 1 {
			username = args[1]
		}

		a, err := newApp(cmd, app.OpGrant, map[string]string{"path": args[0], "username": username})
		if err != nil {
			return err
		}
		defer closeApp(a)

		if err := a.Grant(cmd.Context(), args[0], username, admin, recursive); err != nil {
			return fmt.Errorf("granting access: %w", err)
		}
		fmt.Println("Access granted.")
		return nil
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke PATH USERNAME",
	Short: "Revoke a user's access to an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		a, err := newApp(cmd, app.OpRevoke, map[string]string{"path": args[0], "username": args[1]})
		if err != nil {
			return err
		}
		defer closeApp(a)

		if err := a.Revoke(cmd.Context(), args[0], args[1], recursive); err != nil {
			return fmt.Errorf("revoking access: %w", err)
		}
		fmt.Println("Access revoked.")
		return nil
	},
}

// browsing commands
var lsCmd = &cobra.Command{
	Use:   "ls [PATH]",
	Short: "List accessible items below a directory, or your roots",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "List", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		parent := ""
		if len(args) > 0 {
			parent = args[0]
		}
		items, err := a.List(cmd.Context(), currentUser(cmd), parent)
		if err != nil {
			return err
		}
		printItems(items)
		return nil
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree [PATH]",
	Short: "Show the accessible tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd, "Tree", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		parent := ""
		if len(args) > 0 {
			parent = args[0]
		}
		nodes, err := a.Tree(cmd.Context(), currentUser(cmd), parent)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(nodes)
		}
		printTree(nodes, 0)
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show suggested items",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Suggested", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		items, err := a.Suggested(cmd.Context(), currentUser(cmd))
		if err != nil {
			return err
		}
		printItems(items)
		return nil
	},
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show recently added items",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")

		a, err := newApp(cmd, "Latest", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		items, err := a.Latest(cmd.Context(), currentUser(cmd), count)
		if err != nil {
			return err
		}
		printItems(items)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search accessible items by name and metadata",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "Search", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		items, err := a.Search(cmd.Context(), currentUser(cmd), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		printItems(items)
		return nil
	},
}

// activity commands
var rateCmd = &cobra.Command{
	Use:   "rate PATH RATING",
	Short: "Rate an item from 0 to 10",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value int
		if _, err := fmt.Sscanf(args[1], "%d", &value); err != nil {
			return fmt.Errorf("rating must be a number: %q", args[1])
		}

		a, err := newApp(cmd, app.OpRate, map[string]string{"path": args[0], "rating": args[1]})
		if err != nil {
			return err
		}
		defer closeApp(a)

		if _, err := a.Rate(cmd.Context(), currentUser(cmd), args[0], value); err != nil {
			return fmt.Errorf("rating item: %w", err)
		}
		fmt.Printf("Rated %s: %d\n", args[0], value)
		return nil
	},
}

var viewCmd = &cobra.Command{
	Use:   "view PATH",
	Short: "Record that you viewed an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, app.OpView, map[string]string{"path": args[0]})
		if err != nil {
			return err
		}
		defer closeApp(a)

		item, err := a.View(cmd.Context(), currentUser(cmd), args[0])
		if err != nil {
			return fmt.Errorf("recording view: %w", err)
		}
		fmt.Println(item.Path)
		return nil
	},
}

var recommendCmd = &cobra.Command{
	Use:   "recommend-to USERNAME PATH",
	Short: "Recommend an item to another user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, app.OpRecommend, map[string]string{"to": args[0], "path": args[1]})
		if err != nil {
			return err
		}
		defer closeApp(a)

		if _, err := a.Recommend(cmd.Context(), currentUser(cmd), args[0], args[1]); err != nil {
			return fmt.Errorf("recommending item: %w", err)
		}
		fmt.Printf("Recommended %s to %s\n", args[1], args[0])
		return nil
	},
}

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Show items other users recommended to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Inbox", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		entries, err := a.Inbox(cmd.Context(), currentUser(cmd))
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No suggestions.")
			return nil
		}
		for _, e := range entries {
			from := "(deleted user)"
			if e.From != nil {
				from = e.From.Username
			}
			fmt.Printf("%s  %-12s  %s\n", e.Suggestion.Time.Local().Format("2006-01-02 15:04"), from, e.Item.Path)
		}
		return nil
	},
}

var metaCmd = &cobra.Command{
	Use:   "meta PATH",
	Short: "Update descriptive metadata of an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta := &catalog.ItemMetadata{}
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			meta.Title = &v
		}
		if flags.Changed("album") {
			v, _ := flags.GetString("album")
			meta.Album = &v
		}
		if flags.Changed("artist") {
			meta.Artists, _ = flags.GetStringSlice("artist")
		}
		if flags.Changed("year") {
			v, _ := flags.GetInt64("year")
			meta.Year = &v
		}
		if flags.Changed("duration") {
			v, _ := flags.GetInt64("duration")
			meta.Duration = &v
		}

		a, err := newApp(cmd, app.OpUpdateMetadata, map[string]string{"path": args[0]})
		if err != nil {
			return err
		}
		defer closeApp(a)

		item, err := a.UpdateMetadata(cmd.Context(), args[0], meta)
		if err != nil {
			return fmt.Errorf("updating metadata: %w", err)
		}
		fmt.Printf("Updated %s\n", item.Path)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View catalog operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "GetHistory", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		ops, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-8s  %-8s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the catalog against the filesystem",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Check", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		problems, err := a.Check(cmd.Context())
		if err != nil {
			return err
		}
		if len(problems) == 0 {
			fmt.Println("No problems found.")
			return nil
		}
		for _, p := range problems {
			fmt.Printf("%s: %s\n", p.Item.Path, p.Reason)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	},
}

// snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Upload an encrypted catalog snapshot to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, app.OpSnapshot, nil)
		if err != nil {
			return err
		}
		if !a.KeysConfigured() {
			closeApp(a)
			return fmt.Errorf("encryption keys not configured (run 'mv keys init')")
		}

		version, err := a.Snapshot(cmd.Context())
		if err != nil {
			closeApp(a)
			return err
		}
		if err := a.Close(); err != nil {
			return fmt.Errorf("uploading snapshot: %w", err)
		}
		fmt.Printf("Snapshot version %d uploaded\n", version)
		return nil
	},
}

var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the local catalog with the vault snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		// A stale catalog must still report its status, so this opens like a restore.
		a, err := newApp(cmd, app.OpRestore, nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		status, err := a.SnapshotStatus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Local version:  %d\n", status.LocalVersion)
		fmt.Printf("Remote version: %d\n", status.RemoteVersion)
		switch {
		case status.RemoteVersion > status.LocalVersion:
			fmt.Println("Local catalog is behind: run 'mv snapshot restore'.")
		case status.RemoteVersion < status.LocalVersion:
			fmt.Println("Vault is behind: run 'mv snapshot'.")
		}
		return nil
	},
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Download and decrypt the vault snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("to")

		a, err := newApp(cmd, app.OpRestore, nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		version, err := a.RestoreSnapshot(cmd.Context(), dest, passphrase)
		if err != nil {
			return fmt.Errorf("restoring snapshot: %w", err)
		}
		fmt.Printf("Restored snapshot version %d to %s\n", version, dest)
		fmt.Println("Move it over the catalog database to use it.")
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "SetupKeys", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		passphrase, err := readNewPassphrase()
		if err != nil {
			return err
		}
		if err := a.SetupKeys(passphrase); err != nil {
			return err
		}
		fmt.Println("Keys created. Keep your passphrase safe: snapshots cannot be restored without it.")
		return nil
	},
}

var keysPassphraseCmd = &cobra.Command{
	Use:   "passphrase",
	Short: "Change the passphrase protecting the private key",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ChangePassphrase", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		old, err := readPassphrase("Current passphrase: ")
		if err != nil {
			return err
		}
		next, err := readNewPassphrase()
		if err != nil {
			return err
		}
		if err := a.ChangePassphrase(old, next); err != nil {
			return err
		}
		fmt.Println("Passphrase changed.")
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the catalog database",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the schema migration version",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "MigrationStatus", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		status, err := a.MigrationStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version: %d (latest %d)\n", status.Current, status.Latest)
		if status.Dirty {
			fmt.Println("Schema is dirty: a migration failed part way.")
		}
		return nil
	},
}

var dbSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the catalog schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "DumpSchema", nil)
		if err != nil {
			return err
		}
		defer closeApp(a)

		schema, err := a.DumpSchema(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Print(schema)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("user", "u", os.Getenv("MV_USER"), "Act as this user")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug records")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// user subcommands
	userCmd.AddCommand(userAddCmd)
	userAddCmd.Flags().Bool("superuser", false, "Make the user a superuser")
	userCmd.AddCommand(userListCmd)

	// snapshot subcommands
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
	snapshotRestoreCmd.Flags().String("to", "", "Path to write the restored database to")
	snapshotRestoreCmd.MarkFlagRequired("to")

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)
	keysCmd.AddCommand(keysPassphraseCmd)

	// db subcommands
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbSchemaCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("policy", "p", string(catalog.PolicyAll), "Initial access: all, admin, self or none")
	addCmd.Flags().String("parent", "", "Attach the new tree below this cataloged directory")
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(grantCmd)
	grantCmd.Flags().BoolP("recursive", "r", false, "Apply to the whole subtree")
	grantCmd.Flags().Bool("admin", false, "Grant every superuser")
	rootCmd.AddCommand(revokeCmd)
	revokeCmd.Flags().BoolP("recursive", "r", false, "Apply to the whole subtree")
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Bool("json", false, "Print the tree as JSON")
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(latestCmd)
	latestCmd.Flags().IntP("count", "n", catalog.DefaultLatestCount, "Number of items to show")
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("limit", "n", 20, "Maximum number of results")
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(inboxCmd)
	rootCmd.AddCommand(metaCmd)
	metaCmd.Flags().String("title", "", "Title")
	metaCmd.Flags().String("album", "", "Album")
	metaCmd.Flags().StringSlice("artist", nil, "Artist (repeatable)")
	metaCmd.Flags().Int64("year", 0, "Release year")
	metaCmd.Flags().Int64("duration", 0, "Duration in seconds")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(dbCmd)
}
