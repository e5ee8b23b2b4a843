package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/emilianohg/waypoint/internal/config"
	"github.com/emilianohg/waypoint/internal/db"
	"github.com/emilianohg/waypoint/internal/legacy"
	"github.com/emilianohg/waypoint/internal/models"
	"github.com/emilianohg/waypoint/internal/repository"
	"github.com/emilianohg/waypoint/internal/schema"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show project, milestone and task counts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		sum, err := e.store.Summary(cmd.Context())
		if err != nil {
			e.fail(cmd, err)
		}
		fmt.Printf("Projects:    %d\n", sum.Projects)
		fmt.Printf("Milestones:  %d\n", sum.Milestones)
		fmt.Printf("Tasks:       %d\n", sum.Tasks)
		for _, st := range models.TaskStatuses {
			fmt.Printf("  %-12s %d\n", st, sum.ByStatus[st])
		}
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the stored document to the current layout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		migrated, err := e.store.Migrate(cmd.Context())
		if err != nil {
			e.fail(cmd, err)
		}
		if migrated {
			fmt.Printf("Document upgraded to schema version %d.\n", models.CurrentSchemaVersion)
		} else {
			fmt.Println("Document is already current.")
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a document against the JSON Schema",
	Long: `Check a planning document against the JSON Schema of the current layout.

Without a file argument the document in the configured backend is checked.
Use --upgrade to check what the document would look like after migration.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			data []byte
			err  error
		)
		if len(args) == 1 {
			data, err = os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		} else {
			e := setup(cmd)
			data, err = e.backend.Load(cmd.Context())
			if err != nil {
				e.fail(cmd, err)
			}
			e.close()
			if data == nil {
				fmt.Println("No document stored yet.")
				return
			}
		}

		if upgrade, _ := cmd.Flags().GetBool("upgrade"); upgrade {
			data, _, err = legacy.New().MigrateJSON(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		result, err := schema.Validate(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if result.Valid {
			fmt.Println("Document is valid.")
			return
		}
		for _, verr := range result.Errors {
			fmt.Fprintf(os.Stderr, "  %v\n", verr)
		}
		fmt.Fprintf(os.Stderr, "%d problem(s) found.\n", len(result.Errors))
		os.Exit(1)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole document as JSON or YAML",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		e := setup(cmd)
		defer e.close()

		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		doc, err := e.store.Document(cmd.Context())
		if err != nil {
			e.fail(cmd, err)
		}

		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				e.fail(cmd, err)
			}
			defer f.Close()
			w = f
		}

		if err := writeDocument(w, doc, format); err != nil {
			e.fail(cmd, err)
		}
	},
}

func writeDocument(w io.Writer, doc *models.Document, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (expected json or yaml)", format)
	}
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the SQLite database used by the sqlite backend",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database migration status",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		conn, err := db.Open(cfg.SQLitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		status, err := db.GetMigrationStatus(conn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting migration status: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Database: %s\n", cfg.SQLitePath)
		fmt.Printf("Current version: %d\n", status.CurrentVersion)
		fmt.Printf("Latest version:  %d\n", status.LatestVersion)
		if status.Dirty {
			fmt.Println("Status: DIRTY (a migration failed part way)")
		} else if status.Pending {
			fmt.Println("Status: migrations pending, run 'waypoint db migrate'")
		} else {
			fmt.Println("Status: up to date")
		}
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		conn, err := db.Open(cfg.SQLitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		if err := db.RunMigrations(conn); err != nil {
			fmt.Fprintf(os.Stderr, "Error running migrations: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Migrations applied successfully.")
	},
}

var dbDocumentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List documents stored in the database",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		conn, err := db.OpenAndMigrate(cfg.SQLitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()

		docs, err := repository.NewDocumentRepo(conn).List(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(docs) == 0 {
			fmt.Println("No documents stored.")
			return
		}
		for _, d := range docs {
			marker := " "
			if d.Key == cfg.DocumentKey {
				marker = "*"
			}
			fmt.Printf("%s %s  %d bytes  updated %s\n", marker, d.Key, d.Size, d.UpdatedAt.Local().Format("Jan 02, 2006 15:04"))
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		path := configPath
		if path == "" {
			path, _ = config.ConfigPath()
		}
		fmt.Printf("# %s\n", path)
		fmt.Printf("backend = %q\n", cfg.Backend)
		fmt.Printf("document_path = %q\n", cfg.DocumentPath)
		fmt.Printf("document_key = %q\n", cfg.DocumentKey)
		fmt.Printf("sqlite_path = %q\n", cfg.SQLitePath)
		fmt.Printf("redis_addr = %q\n", cfg.RedisAddr)
		fmt.Printf("redis_db = %d\n", cfg.RedisDB)
		fmt.Printf("listen_addr = %q\n", cfg.ListenAddr)
		fmt.Printf("log_level = %q\n", cfg.LogLevel)
		fmt.Printf("log_format = %q\n", cfg.LogFormat)
	},
}

func init() {
	validateCmd.Flags().Bool("upgrade", false, "Migrate the document in memory before checking it")
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	exportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")

	dbCmd.AddCommand(dbStatusCmd, dbMigrateCmd, dbDocumentsCmd)

	rootCmd.AddCommand(statusCmd, migrateCmd, validateCmd, exportCmd, dbCmd, configCmd)
}
