// Package service is the yatube command line: it runs the web application
// and maintains its database.
package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"yatube/app/config"
	"yatube/app/logger"
	"yatube/app/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is reported by the version command.
const Version = "1.0.0"

// NewRootCommand builds the yatube command tree reading answers from in
// and writing to out.
func NewRootCommand(out io.Writer, in io.Reader) *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	e := &env{out: out, in: bufio.NewReader(in)}

	root := &cobra.Command{
		Use:           "yatube",
		Short:         "Yatube blog platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			l, err := logger.New(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.SetIn(in)
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		serveCommand(e),
		createSuperuserCommand(e),
		initCommand(e),
		cleanCommand(e),
		backupCommand(e),
		restoreCommand(e),
		versionCommand(e),
	)
	return root
}

func serveCommand(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				e.cfg.Server.Addr = addr
			}
			srv, err := NewServer(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := srv.Close(); err != nil {
					e.logger.Warn("close", zap.Error(err))
				}
			}()
			return srv.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func createSuperuserCommand(e *env) *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account for the admin site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				e.printf("Username: ")
				username = e.readLine()
			}
			if password == "" {
				e.printf("Password: ")
				password = e.readLine()
			}

			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := services.NewUserService(store.Users).CreateSuperuser(username, email, password)
			if errs := services.FieldErrors(err); errs != nil {
				for field, msg := range errs {
					e.printf("Error: %s: %s\n", field, msg)
				}
				return errors.New("superuser not created")
			}
			if err != nil {
				return err
			}
			e.logger.Info("superuser created", zap.String("username", user.Username))
			e.printf("Superuser %s created successfully\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func initCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.dbExists() {
				e.printf("Database already exists. Use 'clean' first if you want to reinitialize.\n")
				return nil
			}
			store, err := e.openStore()
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return err
			}
			e.printf("Database initialized successfully\n")
			return nil
		},
	}
}

func cleanCommand(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.dbExists() {
				e.printf("Database is already clean (does not exist)\n")
				return nil
			}
			if !yes && !e.confirm("Are you sure you want to clean the database? This cannot be undone.") {
				e.printf("Operation cancelled\n")
				return nil
			}
			if err := os.RemoveAll(e.cfg.Storage.Path); err != nil {
				return fmt.Errorf("failed to clean database: %w", err)
			}
			e.printf("Database cleaned successfully\n")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func backupCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a backup of the database to the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !e.dbExists() {
				e.printf("No database exists to backup\n")
				return nil
			}
			if err := os.MkdirAll(e.cfg.Storage.BackupDir, 0755); err != nil {
				return fmt.Errorf("failed to create backup directory: %w", err)
			}

			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			name := filepath.Join(e.cfg.Storage.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
			f, err := os.Create(name)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer f.Close()

			if err := store.Backup(f); err != nil {
				return fmt.Errorf("failed to backup database: %w", err)
			}
			e.printf("Database backed up successfully to %s\n", name)
			return nil
		},
	}
}

func restoreCommand(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backupFile := args[0]
			fi, err := os.Stat(backupFile)
			if err != nil {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}
			if fi.Size() == 0 {
				return fmt.Errorf("backup file is empty: %s", backupFile)
			}

			if e.dbExists() {
				if !yes && !e.confirm("Existing database found. Do you want to replace it?") {
					e.printf("Operation cancelled\n")
					return nil
				}
				if err := os.RemoveAll(e.cfg.Storage.Path); err != nil {
					return fmt.Errorf("failed to remove existing database: %w", err)
				}
			}

			f, err := os.Open(backupFile)
			if err != nil {
				return fmt.Errorf("failed to open backup file: %w", err)
			}
			defer f.Close()

			store, err := e.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Restore(f); err != nil {
				return fmt.Errorf("failed to restore database: %w", err)
			}
			e.printf("Database restored successfully\n")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func versionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			e.printf("yatube version %s\n", Version)
		},
	}
}
