package main

import (
	"fmt"
	"strings"
	"ttgen/internal/domain"

	"github.com/spf13/cobra"
)

func listPhases(cmd *cobra.Command, args []string) error {
	mode, err := domain.ParseMode(modeFlag)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range domain.CatalogPhases() {
		p := domain.LookupPhase(name, runCfg.Combine)

		var flags []string
		if p.IsDepthPhase {
			flags = append(flags, "depth")
		}
		if p.IsCrustal {
			flags = append(flags, "crustal")
		}
		fmt.Fprintf(out, "%-8s %-14s max=%5.1f  %s\n", p.Name, strings.Join(flags, ","), p.MaxDistance, strings.Join(p.Members, "|"))
	}

	fmt.Fprintf(out, "\ndefault set (%s): %s\n", mode, strings.Join(domain.DefaultPhases(mode), " "))
	return nil
}
