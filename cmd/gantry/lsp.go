package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gantry/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the gantry language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func runLSP(_ *cobra.Command, _ []string) error {
	server := lsp.NewServer(os.Stdin, os.Stdout, nil, nil)
	if err := server.Run(); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
