package commands

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

func NewThreadsCommand(log logr.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "Lists the threads the target exposes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(log)
			if err != nil {
				return err
			}
			defer s.Close()
			current := s.Target.CurrentThread()
			for _, th := range s.Target.Threads() {
				mark := " "
				if current != nil && th.PTID() == current.PTID() {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", mark, th.PTID(), s.Target.PidToStr(th.PTID()))
			}
			return nil
		},
	}
}
