package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

func NewMemCommand(log logr.Logger) *cobra.Command {
	var addr, size uint64
	var str bool
	memCmd := &cobra.Command{
		Use:   "mem --addr address [--len n | --string]",
		Short: "Dumps dump memory through the target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(log)
			if err != nil {
				return err
			}
			defer s.Close()
			ptr := s.Target.ToPointer(addr)
			if str {
				v, err := ptr.MemReadString()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q\n", v)
				return nil
			}
			data, err := ptr.MemRead(size)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), hex.Dump(data))
			return nil
		},
	}
	memCmd.Flags().Uint64Var(&addr, "addr", 0, "Start address.")
	memCmd.Flags().Uint64Var(&size, "len", 0x40, "Number of bytes to dump.")
	memCmd.Flags().BoolVar(&str, "string", false, "Read a NUL-terminated string instead.")
	_ = memCmd.MarkFlagRequired("addr")
	return memCmd
}
