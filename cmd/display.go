/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	variopro "github.com/allbin/go-variopro"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// displayCmd represents the display command
var displayCmd = &cobra.Command{
	Use:   "display [cells] [port]",
	Short: "Push braille cell patterns to the display",
	Long: `Write raw braille dot patterns to every braille-capable module.

Cell data is given as hex bytes, one byte per cell, dot 1 in bit 0 through
dot 8 in bit 7. The buffer is split across the chain in a fixed order: main
display first, then the status unit (4 cells), then the telephone unit
(12 cells); absent modules are skipped. No braille translation happens here.

Example usage:
  variopro display "FF 00 FF 00" /dev/ttyUSB0
  variopro display --fill FF /dev/ttyUSB0   # all dots on every cell
  variopro display --fill 00 /dev/ttyUSB0   # clear the display`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		fill, _ := cmd.Flags().GetString("fill")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		hold, _ := cmd.Flags().GetDuration("hold")

		var cellArg string
		portArgs := args
		if fill == "" {
			cellArg = args[0]
			portArgs = args[1:]
		}
		portPath, err := resolvePort(portArgs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
		successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)

		fmt.Printf("%s Opening %s...\n", infoStyle.Render("⚡"), portPath)

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

		total := drv.NumCells()
		for _, m := range drv.Modules() {
			if !isMain(m.Kind) {
				total += m.Cells
			}
		}

		var cells []byte
		if fill != "" {
			b, err := parseHexBytes(fill)
			if err != nil || len(b) != 1 {
				fmt.Fprintf(os.Stderr, "Invalid fill byte: %s\n", fill)
				os.Exit(1)
			}
			cells = make([]byte, total)
			for i := range cells {
				cells[i] = b[0]
			}
		} else {
			cells, err = parseHexBytes(cellArg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid cell data: %v\n", err)
				os.Exit(1)
			}
		}

		if err := drv.Display(cells); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Wrote %d cells (%d cell display)\n", successStyle.Render("✓"), len(cells), drv.NumCells())

		// Keep the connection up so the pattern stays visible; the display
		// blanks when the driver disconnects.
		if hold > 0 {
			time.Sleep(hold)
		}
	},
}

func isMain(k variopro.ModuleKind) bool {
	return k == variopro.KindMainDisplay80 || k == variopro.KindMainDisplay64
}

func parseHexBytes(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, "0X", "")
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("hex string must have even length")
	}
	out := make([]byte, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		var b byte
		if _, err := fmt.Sscanf(s[i:i+2], "%02x", &b); err != nil {
			return nil, fmt.Errorf("invalid hex byte %q", s[i:i+2])
		}
		out = append(out, b)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(displayCmd)

	displayCmd.Flags().String("fill", "", "Fill every cell with one hex byte instead of passing cell data")
	displayCmd.Flags().DurationP("timeout", "t", 10*time.Second, "Handshake timeout waiting for the main display")
	displayCmd.Flags().Duration("hold", 5*time.Second, "How long to keep the connection (and pattern) up")
}
