package commands

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/wnxd/crashdbg/target"
)

func NewSwitchCommand(log logr.Logger) *cobra.Command {
	var task uint64
	switchCmd := &cobra.Command{
		Use:   "switch --task address",
		Short: "Selects a task in the engine and reports where the target lands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(log)
			if err != nil {
				return err
			}
			defer s.Close()
			err = s.Engine.SetCurrentTask(task)
			if err != nil {
				return err
			}
			err = s.Target.ChangeThreadContext(task)
			if err != nil {
				return err
			}
			th := s.Target.CurrentThread()
			if th == nil {
				return target.ErrThreadInvalid
			}
			err = s.Target.FetchRegisters(th, target.AllRegisters)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", th.PTID(), s.Target.PidToStr(th.PTID()))
			printRegisters(cmd.OutOrStdout(), s.Host.Arch(), s.Host.Registers(th))
			return nil
		},
	}
	switchCmd.Flags().Uint64Var(&task, "task", 0, "Task address to switch to.")
	_ = switchCmd.MarkFlagRequired("task")
	return switchCmd
}
