package lnedit

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/lnedit/internal/version"
	"github.com/arthur-debert/lnedit/pkg/config"
	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/fields"
	"github.com/arthur-debert/lnedit/pkg/filesystem"
	"github.com/arthur-debert/lnedit/pkg/logging"
	"github.com/arthur-debert/lnedit/pkg/paths"
	"github.com/arthur-debert/lnedit/pkg/relocate"
	"github.com/arthur-debert/lnedit/pkg/replace"
	"github.com/arthur-debert/lnedit/pkg/suggest"
	"github.com/arthur-debert/lnedit/pkg/swap"
	"github.com/arthur-debert/lnedit/pkg/types"
	"github.com/arthur-debert/lnedit/pkg/ui/confirmations"
	"github.com/arthur-debert/lnedit/pkg/ui/editor"
	"github.com/arthur-debert/lnedit/pkg/ui/output"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Env holds the collaborators the commands work with
type Env struct {
	FS types.FS
	// WorkDir returns the directory relative arguments are taken from
	WorkDir func() (string, error)
	// Editor returns the editing collaborator used when no --name or
	// --target is given
	Editor func(cmd *cobra.Command) editor.Editor
	// Confirm returns the prompt used by swap
	Confirm func(cmd *cobra.Command) types.Confirmer
}

// DefaultEnv works on the real filesystem and the terminal
func DefaultEnv() *Env {
	return &Env{
		FS:      filesystem.NewOS(),
		WorkDir: paths.CurrentWorkDir,
		Editor: func(cmd *cobra.Command) editor.Editor {
			return editor.NewForm(cmd.InOrStdin(), cmd.OutOrStdout(), !output.IsTerminal(cmd.OutOrStdout()))
		},
		Confirm: func(cmd *cobra.Command) types.Confirmer {
			return confirmations.NewConsoleDialog(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm
		},
	}
}

// app is the state shared by the commands of one invocation
type app struct {
	env        *Env
	verbosity  int
	configFile string
	cfg        *config.Config
}

func (a *app) resolver() (*paths.Resolver, error) {
	dir, err := a.env.WorkDir()
	if err != nil {
		return nil, err
	}
	return paths.NewResolver(a.env.FS, dir)
}

func (a *app) printer(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.OutOrStdout(), a.cfg.Output.Color)
}

func (a *app) errPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinter(cmd.ErrOrStderr(), a.cfg.Output.Color)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithEnv(DefaultEnv())
}

// NewRootCmdWithEnv creates the root command over env
func NewRootCmdWithEnv(env *Env) *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	a := &app{env: env}

	rootCmd := &cobra.Command{
		Use:     "lnedit",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLoggerWithOutput(a.verbosity, cmd.ErrOrStderr())
			cmdLogger := logging.WithFields(map[string]interface{}{
				"command":   cmd.Name(),
				"verbosity": a.verbosity,
			})
			cmdLogger.Debug().Msg("Command started")

			cfg, err := config.Load(a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			log.Debug().Str("source", cfg.Source).Msg("Configuration loaded")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newEditCmd(a))
	rootCmd.AddCommand(newSwapCmd(a))
	rootCmd.AddCommand(newMoveCmd(a))
	rootCmd.AddCommand(newGenConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// normalizeFlagName accepts --allow_broken for --allow-broken
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func newEditCmd(a *app) *cobra.Command {
	var (
		backup      bool
		force       bool
		allowBroken bool
		justPrint   bool
		deleteOrig  bool
		legacy      bool
		format      string
		target      string
		name        string
	)

	cmd := &cobra.Command{
		Use:     "edit <symlink>",
		Short:   MsgEditShort,
		Long:    MsgEditLong,
		Example: MsgEditExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			link := args[0]

			resolver, err := a.resolver()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("format") {
				format = cfg.Output.DumpFormat
			}
			dumpFormat, err := fields.ParseFormat(format)
			if err != nil {
				return err
			}

			mode := replace.ModeAtomic
			if legacy || !cfg.Replace.Atomic {
				mode = replace.ModeLegacy
			}
			replacer := replace.New(a.env.FS, resolver, replace.Options{
				Mode:         mode,
				BackupSuffix: cfg.Replace.BackupSuffix,
			})

			errOut := a.errPrinter(cmd)
			for _, w := range replacer.Inspect(link) {
				errOut.Println("Warning", fmt.Sprintf(MsgWarningFormat, w.String()))
			}

			engine := suggest.NewEngine(a.env.FS, resolver, suggest.Options{
				RootMarker: cfg.Root.Marker,
				RootPath:   cfg.Root.Path,
			})
			defaults, err := engine.Fields(link, suggest.FieldOptions{
				AllowBroken: cfg.Replace.AllowBroken || allowBroken || force,
				SaveBackup:  cfg.Replace.SaveBackup || backup,
				DeleteOrig:  deleteOrig,
			})
			if err != nil {
				return err
			}

			var ed editor.Editor
			if cmd.Flags().Changed("target") || cmd.Flags().Changed("name") {
				ed = editor.Static{Name: name, Target: target}
			} else {
				ed = a.env.Editor(cmd)
			}

			updated, err := ed.Edit(defaults)
			cancelled := errors.IsErrorCode(err, errors.ErrCancelled)
			if err != nil && !cancelled {
				return err
			}

			if justPrint {
				return fields.Dump(cmd.OutOrStdout(), dumpFormat, defaults, updated)
			}

			out := a.printer(cmd)
			if cancelled {
				out.Println("Muted", fmt.Sprintf(MsgEditCancelled, link))
				return nil
			}

			plan, err := updated.Plan(link)
			if err != nil {
				return err
			}
			result, err := replacer.Replace(plan)
			if err != nil {
				return err
			}

			out.Println("Success", out.Link(result.Link, result.Target))
			if result.TargetMissing {
				errOut.Println("Warning", fmt.Sprintf(MsgTargetNote, result.Target))
			}
			if result.BackupPath != "" {
				out.Println("Muted", fmt.Sprintf(MsgBackupSaved, result.BackupPath))
			}
			if result.RemovedOrigin != "" {
				out.Println("Muted", fmt.Sprintf(MsgOriginRemoved, result.RemovedOrigin))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&backup, "backup", "b", false, MsgFlagBackup)
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	cmd.Flags().BoolVar(&allowBroken, "allow-broken", false, MsgFlagAllowBroken)
	cmd.Flags().BoolVarP(&justPrint, "just-print", "j", false, MsgFlagJustPrint)
	cmd.Flags().StringVar(&format, "format", string(fields.FormatJSON), MsgFlagFormat)
	cmd.Flags().StringVar(&target, "target", "", MsgFlagTarget)
	cmd.Flags().StringVar(&name, "name", "", MsgFlagName)
	cmd.Flags().BoolVar(&deleteOrig, "delete-orig", false, MsgFlagDeleteOrig)
	cmd.Flags().BoolVar(&legacy, "legacy", false, MsgFlagLegacy)

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(fields.FormatJSON), string(fields.FormatYAML), string(fields.FormatTOML)}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func newSwapCmd(a *app) *cobra.Command {
	var (
		force    bool
		relative bool
	)

	cmd := &cobra.Command{
		Use:     "swap [symlink]",
		Short:   MsgSwapShort,
		Long:    MsgSwapLong,
		Example: MsgSwapExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("relative") {
				relative = a.cfg.Swap.Relative
			}

			resolver, err := a.resolver()
			if err != nil {
				return err
			}

			location := resolver.WorkDir()
			if len(args) == 1 {
				location = args[0]
			}

			swapper := swap.New(a.env.FS, resolver)
			plan, err := swapper.PlanFromLink(location, relative)
			if err != nil {
				return err
			}

			var confirm types.Confirmer
			if !force {
				confirm = a.env.Confirm(cmd)
			}
			steps, err := swapper.Run(plan, force, confirm, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			out := a.printer(cmd)
			out.Println("Success", fmt.Sprintf(MsgSwapped, steps.Old, steps.New))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagSwapForce)
	cmd.Flags().BoolVar(&relative, "relative", true, MsgFlagRelative)

	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	var relative bool

	cmd := &cobra.Command{
		Use:     "move <src> <dst>",
		Short:   MsgMoveShort,
		Long:    MsgMoveLong,
		Example: MsgMoveExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("relative") {
				relative = a.cfg.Move.Relative
			}

			resolver, err := a.resolver()
			if err != nil {
				return err
			}

			result, err := relocate.New(a.env.FS, resolver).Move(&types.RelocatePlan{
				Source:      args[0],
				Destination: args[1],
				Relative:    relative,
			})
			if err != nil {
				return err
			}

			out := a.printer(cmd)
			msg := MsgLinkCopied
			if result.Moved {
				msg = MsgMovedAndLinked
			}
			out.Println("Success", fmt.Sprintf(msg, out.Link(result.Link, result.Target)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&relative, "relative", false, MsgFlagRelative)

	return cmd
}

func newGenConfigCmd(a *app) *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if !effective {
				_, err := fmt.Fprintln(w, config.GenerateConfigContent())
				return err
			}

			data, err := toml.Marshal(a.cfg.ToMap())
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to encode configuration")
			}
			header := MsgEffectiveHeader
			if a.cfg.Source != "" {
				header = fmt.Sprintf(MsgConfigSource, a.cfg.Source)
			}
			_, err = fmt.Fprintf(w, "%s\n%s", header, data)
			return err
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, MsgFlagEffective)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}
}
