package lnedit

import (
	_ "embed"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/arthur-debert/lnedit/pkg/errors"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Edit, swap and move symbolic links"
	MsgEditShort       = "Edit the target or name of a symlink"
	MsgSwapShort       = "Swap a directory with the symlink pointing at it"
	MsgMoveShort       = "Move an entry and leave a symlink behind"
	MsgGenConfigShort  = "Print a default configuration file"
	MsgCompletionShort = "Generate shell completion script"
	MsgVersionShort    = "Print version information"

	// Status messages
	MsgEditCancelled   = "Cancelled edit. %s is unchanged."
	MsgBackupSaved     = "backup saved as %s"
	MsgOriginRemoved   = "removed %s"
	MsgSwapped         = "Swapped %s into %s"
	MsgLinkCopied      = "Copied link %s"
	MsgMovedAndLinked  = "Moved, left %s"
	MsgWarningFormat   = "warning: %s"
	MsgTargetNote      = "NOTE: %s doesn't appear to exist."
	MsgConfigSource    = "# loaded from %s"
	MsgVersionFormat   = "lnedit version %s\n  commit: %s\n  built:  %s\n"
	MsgNoCommand       = "no command specified"
	MsgEffectiveHeader = "# effective configuration"

	// Error messages
	MsgErrNotASymlink   = "%s isn't a symlink"
	MsgErrTargetMissing = "%s doesn't appear to exist ('Allow writing broken symlink' set to '%t', use --allow-broken to create the link anyway)"
	MsgErrLinkOccupied  = "%s exists and is not a symlink, refusing to replace it"
	MsgErrConfig        = "bad configuration: %s"

	// Flag descriptions
	MsgFlagVerbose     = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig      = "Configuration file (default $XDG_CONFIG_HOME/lnedit/config.toml)"
	MsgFlagBackup      = "Keep the old link as <link><suffix>"
	MsgFlagForce       = "Same as --allow-broken"
	MsgFlagAllowBroken = "Create the link even if the target does not exist"
	MsgFlagJustPrint   = "Print the edited fields and change nothing"
	MsgFlagFormat      = "Format for --just-print: json, yaml or toml"
	MsgFlagTarget      = "New target, skipping the interactive form"
	MsgFlagName        = "New link name, skipping the interactive form"
	MsgFlagDeleteOrig  = "Remove the original link when writing under a new name"
	MsgFlagLegacy      = "Remove the old link before creating the new one"
	MsgFlagSwapForce   = "Do not ask for confirmation"
	MsgFlagRelative    = "Use a relative target for the link left behind"
	MsgFlagEffective   = "Print the loaded configuration instead of the defaults"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/edit-long.txt
	msgEditLongRaw string
	MsgEditLong    = strings.TrimSpace(msgEditLongRaw)

	//go:embed msgs/edit-example.txt
	msgEditExampleRaw string
	MsgEditExample    = strings.TrimRight(msgEditExampleRaw, "\n")

	//go:embed msgs/swap-long.txt
	msgSwapLongRaw string
	MsgSwapLong    = strings.TrimSpace(msgSwapLongRaw)

	//go:embed msgs/swap-example.txt
	msgSwapExampleRaw string
	MsgSwapExample    = strings.TrimRight(msgSwapExampleRaw, "\n")

	//go:embed msgs/move-long.txt
	msgMoveLongRaw string
	MsgMoveLong    = strings.TrimSpace(msgMoveLongRaw)

	//go:embed msgs/move-example.txt
	msgMoveExampleRaw string
	MsgMoveExample    = strings.TrimRight(msgMoveExampleRaw, "\n")

	//go:embed msgs/genconfig-long.txt
	msgGenConfigLongRaw string
	MsgGenConfigLong    = strings.TrimSpace(msgGenConfigLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)

// UserMessage renders err for the terminal. Coded errors the user can act
// on get a plain sentence; the rest keep their message and cause.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch errors.GetErrorCode(err) {
	case errors.ErrNotASymlink:
		if path := errors.DetailString(err, "path"); path != "" {
			return fmt.Sprintf(MsgErrNotASymlink, path)
		}
	case errors.ErrTargetMissing:
		if target := errors.DetailString(err, "target"); target != "" {
			allowBroken, _ := errors.GetErrorDetails(err)["allowBroken"].(bool)
			return fmt.Sprintf(MsgErrTargetMissing, target, allowBroken)
		}
	case errors.ErrSymlinkExists:
		if path := errors.DetailString(err, "path"); path != "" {
			return fmt.Sprintf(MsgErrLinkOccupied, path)
		}
	case errors.ErrConfigLoad, errors.ErrConfigParse:
		return fmt.Sprintf(MsgErrConfig, plainMessage(err))
	}
	return plainMessage(err)
}

// plainMessage drops the [CODE] prefix of coded errors
func plainMessage(err error) string {
	var lerr *errors.LneditError
	if !stderrors.As(err, &lerr) {
		return err.Error()
	}
	if lerr.Wrapped != nil {
		return fmt.Sprintf("%s: %v", lerr.Message, lerr.Wrapped)
	}
	return lerr.Message
}
