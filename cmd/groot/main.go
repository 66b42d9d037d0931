// cmd/groot/main.go
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"groot/internal/config"
	apperrors "groot/internal/errors"
	"groot/internal/logging"
	"groot/internal/repository"
	"groot/internal/workspace"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	verbose    bool

	cfg    = config.Default()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "groot",
	Short: "Groot is a minimal local version control system",
	Long: `Groot stores file contents by their digest, stages files into an index,
seals the index into an immutable chain of commits, and shows line diffs
between a commit and its parent.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// setup loads configuration and builds the logger for one invocation.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		if root, err := workspace.FindRoot("."); err == nil {
			path = repository.Layout{Root: root}.ConfigFile()
		}
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	l, err := logging.NewLogger(level)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	logger = l.WithInvocation(cmd.Name())
	return nil
}

// openRepo opens the repository enclosing the working directory.
func openRepo() (*repository.Repository, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("getting current directory: %w", err)
	}
	root, err := workspace.FindRoot(cwd)
	if err != nil {
		return nil, "", err
	}
	repo, err := repository.Open(root, cfg, logger)
	if err != nil {
		return nil, "", err
	}
	return repo, cwd, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default .groot/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new Groot repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}

			err = repository.Init(dir, cfg, logger)
			if errors.Is(err, apperrors.ErrAlreadyInitialized) {
				fmt.Fprintln(cmd.OutOrStdout(), "Already initialized the .groot folder")
				return nil
			}
			if err != nil {
				return fmt.Errorf("initializing repository: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty Groot repository in",
				filepath.Join(dir, workspace.DirName))
			return nil
		},
	}

	var addCmd = &cobra.Command{
		Use:   "add <path>",
		Short: "Store a file and stage it for the next commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, cwd, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			entry, err := repo.Add(cwd, args[0])
			if err != nil {
				return fmt.Errorf("adding %s: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), entry.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", entry.Path)
			return nil
		},
	}

	var commitCmd = &cobra.Command{
		Use:   "commit <message>",
		Short: "Record the staged files as a new commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			c, err := repo.Commit(args[0])
			if err != nil {
				return fmt.Errorf("committing: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Committed successfully with %s\n", c.ID)
			return nil
		},
	}

	var logCmd = &cobra.Command{
		Use:   "log",
		Short: "Show commit history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			oneline, _ := cmd.Flags().GetBool("oneline")

			repo, _, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			for c, err := range repo.Log() {
				if err != nil {
					return fmt.Errorf("walking history: %w", err)
				}
				printCommit(cmd.OutOrStdout(), c, oneline)
			}
			return nil
		},
	}
	logCmd.Flags().Bool("oneline", false, "print one line per commit")

	var showCmd = &cobra.Command{
		Use:   "show <commitId>",
		Short: "Show the files of a commit and their diff against its parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unified := -1
			if cmd.Flags().Changed("unified") {
				unified, _ = cmd.Flags().GetInt("unified")
			}

			repo, _, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			report, err := repo.Show(args[0])
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report, unified)
			return nil
		},
	}
	showCmd.Flags().IntP("unified", "U", 3, "print unified hunks with N lines of context")

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check stored objects and the commit chain for corruption",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			report, err := repo.Verify()
			if err != nil {
				return fmt.Errorf("verifying repository: %w", err)
			}

			printVerify(cmd.OutOrStdout(), report)
			if !report.OK() {
				return fmt.Errorf("%d problem(s) found", len(report.Problems))
			}
			return nil
		},
	}

	rootCmd.AddCommand(initCmd, addCmd, commitCmd, logCmd, showCmd, verifyCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
