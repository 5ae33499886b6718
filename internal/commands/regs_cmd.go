package commands

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/wnxd/crashdbg/host"
	"github.com/wnxd/crashdbg/target"
)

func NewRegsCommand(log logr.Logger) *cobra.Command {
	var ctx uint64
	regsCmd := &cobra.Command{
		Use:   "regs [--cpu n]",
		Short: "Prints the registers of one thread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(log)
			if err != nil {
				return err
			}
			defer s.Close()
			th := s.Target.CurrentThread()
			if cmd.Flags().Changed("cpu") {
				th, err = s.Target.FindThread(target.PTID{Pid: session.Pid, Tid: ctx})
				if err != nil {
					return err
				}
			}
			if th == nil {
				return target.ErrThreadInvalid
			}
			err = s.Target.FetchRegisters(th, target.AllRegisters)
			if err != nil {
				return err
			}
			printRegisters(cmd.OutOrStdout(), s.Host.Arch(), s.Host.Registers(th))
			return nil
		},
	}
	regsCmd.Flags().Uint64Var(&ctx, "cpu", 0, "Context (CPU) whose registers are printed. Defaults to the current thread.")
	return regsCmd
}

func printRegisters(w io.Writer, arch target.Arch, cache *host.RegCache) {
	for reg := 0; reg < arch.NumRegs(); reg++ {
		name := arch.RegName(reg)
		if cache.Status(reg) != target.RegStatus_Valid {
			fmt.Fprintf(w, "%-8s <unavailable>\n", name)
		} else if v, ok := cache.Uint(reg); ok && arch.RegSize(reg) <= 8 {
			fmt.Fprintf(w, "%-8s %#0*x\n", name, arch.RegSize(reg)*2+2, v)
		} else {
			fmt.Fprintf(w, "%-8s %s\n", name, hex.EncodeToString(cache.Value(reg)))
		}
	}
}
