package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m3rciful/royaldns/dns/menu"
	"github.com/m3rciful/royaldns/dns/routing"
)

var validateCmd = &cobra.Command{
	Use:   "validate [routing-file]",
	Short: "Check the menu graph and the routing file",
	Long:  `Builds the menu graph, reports unresolved choices or unreachable nodes, and parses the routing file.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file := routing.DefaultFile
		if len(args) > 0 {
			file = args[0]
		}
		if err := runValidate(cmd.OutOrStdout(), file); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(out io.Writer, routingFile string) error {
	nav, err := menu.Default()
	if err != nil {
		return err
	}
	if lost := nav.Unreachable(); len(lost) > 0 {
		return fmt.Errorf("unreachable nodes: %s", strings.Join(lost, ", "))
	}
	fmt.Fprintf(out, "menu: %d nodes ok\n", len(nav.Graph().Keys()))

	table, err := routing.Load(routingFile)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "routing: %d servers, %d international\n", len(table.Servers), len(table.International))
	for _, c := range menu.DefaultCatalog().Countries {
		if _, _, ok := table.Lookup(menu.PrefixSpeed + c.Code); !ok {
			fmt.Fprintf(out, "warning: no server for %s\n", menu.PrefixSpeed+c.Code)
		}
	}
	return nil
}
