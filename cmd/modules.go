/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	variopro "github.com/allbin/go-variopro"
	"github.com/evertras/bubble-table/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// modulesCmd represents the modules command
var modulesCmd = &cobra.Command{
	Use:   "modules [port]",
	Short: "Show the modules attached to a VarioPro chain",
	Long: `Run the module-detection handshake and print every attached module.

Connects to the display, queries the chain for identity announcements and
waits briefly so hot-plugged auxiliary units (TASO, status, telephone) have
a chance to answer too, then prints a table of what was found.

Example usage:
  variopro modules /dev/ttyUSB0
  variopro modules              # auto-detect the port by USB ID
  variopro modules --settle 2s  # wait longer for auxiliary units`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath, err := resolvePort(args)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		timeout, _ := cmd.Flags().GetDuration("timeout")
		settle, _ := cmd.Flags().GetDuration("settle")

		drv, err := variopro.Open(portPath,
			variopro.WithBaudRate(viper.GetInt("baud")),
			variopro.WithHandshakeTimeout(timeout),
			variopro.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer drv.Close()

		// The main display answers first; give the rest of the chain a
		// moment to announce as well.
		time.Sleep(settle)

		rows := make([]table.Row, 0, 4)
		for _, m := range drv.Modules() {
			cells := "-"
			if m.Cells > 0 {
				cells = fmt.Sprintf("%d", m.Cells)
			}
			rows = append(rows, table.NewRow(table.RowData{
				"kind":  m.Kind.String(),
				"id":    m.Identity.String(),
				"cells": cells,
			}))
		}

		t := table.New([]table.Column{
			table.NewColumn("kind", "Module", 14),
			table.NewColumn("id", "Identity", 14),
			table.NewColumn("cells", "Cells", 6),
		}).WithRows(rows)

		fmt.Println(t.View())
	},
}

func init() {
	rootCmd.AddCommand(modulesCmd)

	modulesCmd.Flags().DurationP("timeout", "t", 10*time.Second, "Handshake timeout waiting for the main display")
	modulesCmd.Flags().Duration("settle", time.Second, "Extra time to wait for auxiliary units after the handshake")
}
