package commands

import (
	"fmt"

	"github.com/coursereg/registrar/internal/adapters/console"
	"github.com/coursereg/registrar/internal/adapters/repository"
	"github.com/coursereg/registrar/internal/adapters/spreadsheet"
	"github.com/coursereg/registrar/internal/application/services"
	"github.com/coursereg/registrar/internal/domain/entities"
	"github.com/coursereg/registrar/internal/infrastructure/config"
	"github.com/coursereg/registrar/internal/infrastructure/logger"
	"github.com/coursereg/registrar/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the registrar root command. Without a subcommand
// it starts an interactive session.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "registrar",
		Short: "Student course registration",
		Long: `Registrar keeps a roster of students registered for courses in a JSON file.
Run it without a subcommand for the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, fs)
		},
	}

	rootCmd.PersistentFlags().String(config.FileFlag, "", `Roster JSON file (default "Enrollments.json")`)

	rootCmd.AddCommand(NewRunCommand(fs))
	rootCmd.AddCommand(NewListCommand(fs))
	rootCmd.AddCommand(NewRegisterCommand(fs))
	rootCmd.AddCommand(NewExportCommand(fs))
	rootCmd.AddCommand(NewImportCommand(fs))
	rootCmd.AddCommand(NewVersionCommand(fs))

	return rootCmd
}

// NewRunCommand creates the interactive session command
func NewRunCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the interactive registration menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd, fs)
		},
	}
}

// NewListCommand creates the list command
func NewListCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the current roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd, fs)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.service.Load(cmd.Context()); err != nil {
				return err
			}
			a.service.Show()
			return nil
		},
	}
}

// NewRegisterCommand creates the non-interactive register command
func NewRegisterCommand(fs afero.Fs) *cobra.Command {
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register a student for a course and save the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			course, _ := cmd.Flags().GetString("course")

			reg := entities.Registration{FirstName: firstName, LastName: lastName, CourseName: course}
			if err := reg.Validate(); err != nil {
				return err
			}

			a, err := bootstrap(cmd, fs)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.service.Load(ctx); err != nil {
				return err
			}
			if err := a.service.Register(ctx, reg); err != nil {
				return err
			}
			return a.service.Save(ctx)
		},
	}

	registerCmd.Flags().String("first-name", "", "Student first name (required, letters only)")
	registerCmd.Flags().String("last-name", "", "Student last name (required, letters only)")
	registerCmd.Flags().String("course", "", "Course name")
	_ = registerCmd.MarkFlagRequired("first-name")
	_ = registerCmd.MarkFlagRequired("last-name")

	return registerCmd
}

// NewExportCommand creates the spreadsheet export command
func NewExportCommand(fs afero.Fs) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the roster to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			a, err := bootstrap(cmd, fs)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.service.Load(cmd.Context()); err != nil {
				return err
			}

			f, err := fs.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			roster := a.service.Roster()
			if err := spreadsheet.NewWorkbook(a.logger).Export(roster, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d registrations to %s\n", roster.Len(), output)
			return nil
		},
	}

	exportCmd.Flags().StringP("output", "o", "Enrollments.xlsx", "Workbook to write")
	return exportCmd
}

// NewImportCommand creates the spreadsheet import command
func NewImportCommand(fs afero.Fs) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Append registrations from an XLSX workbook and save the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, _ := cmd.Flags().GetString("input")

			a, err := bootstrap(cmd, fs)
			if err != nil {
				return err
			}
			defer a.close()

			f, err := fs.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", input, err)
			}
			defer f.Close()

			imported, skipped, err := spreadsheet.NewWorkbook(a.logger).Import(f)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := a.service.Load(ctx); err != nil {
				return err
			}
			for _, reg := range imported {
				if err := a.service.Register(ctx, reg); err != nil {
					return err
				}
			}
			if err := a.service.Save(ctx); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d registrations (%d rows skipped)\n", imported.Len(), skipped)
			return nil
		},
	}

	importCmd.Flags().StringP("input", "i", "", "Workbook to read (required)")
	_ = importCmd.MarkFlagRequired("input")
	return importCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand(fs afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Registrar version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(fs, cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", cfg.App.Name, cfg.App.Version)
			return nil
		},
	}
}

func runSession(cmd *cobra.Command, fs afero.Fs) error {
	a, err := bootstrap(cmd, fs)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Infow("Starting registration session",
		"file", a.cfg.Storage.File,
		"environment", a.cfg.App.Environment,
	)
	return a.service.Run(cmd.Context())
}

// app bundles what one command invocation needs
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	recorder *metrics.Recorder
	service  *services.RegistrationService
}

func bootstrap(cmd *cobra.Command, fs afero.Fs) (*app, error) {
	cfg, err := config.Load(fs, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger = appLogger.WithSession(uuid.NewString())

	recorder := metrics.New(cfg.Metrics)
	repo := repository.NewJSONRosterRepository(fs, cfg.Storage.File, appLogger)
	con := console.New(cmd.InOrStdin(), cmd.OutOrStdout())

	return &app{
		cfg:      cfg,
		logger:   appLogger,
		recorder: recorder,
		service:  services.NewRegistrationService(repo, con, recorder, appLogger),
	}, nil
}

func (a *app) close() {
	if err := a.recorder.Flush(); err != nil {
		a.logger.WithError(err).Warn("Failed to flush metrics")
	}
	// Sync on a terminal stderr fails with EINVAL; nothing to do about it
	_ = a.logger.Close()
}
