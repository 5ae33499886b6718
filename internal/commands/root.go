package commands

import (
	"github.com/spf13/cobra"

	"github.com/wnxd/crashdbg/internal/logger"
)

func NewRootCommand(log *logger.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "crashdbg",
		Short:         "Inspects kernel dump snapshots through the crash target",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	log.AddLevelFlag(rootCmd.PersistentFlags())
	addSessionFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewThreadsCommand(log.Logger))
	rootCmd.AddCommand(NewRegsCommand(log.Logger))
	rootCmd.AddCommand(NewMemCommand(log.Logger))
	rootCmd.AddCommand(NewSwitchCommand(log.Logger))
	rootCmd.AddCommand(NewServeCommand(log.Logger))
	return rootCmd
}
