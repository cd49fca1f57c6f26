/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-variopro/internal/serport"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial ports",
	Long: `List serial ports on the system and flag VarioPro displays.

VarioPro displays enumerate as FTDI USB serial converters with product IDs
FE76 (80 cells) or FE77 (64 cells); ports matching those IDs are marked.
Use --variopro to show only matching ports, which is handy in scripts:

  variopro monitor "$(variopro list --variopro | head -n1)"`,
	Run: func(cmd *cobra.Command, args []string) {
		onlyVarioPro, _ := cmd.Flags().GetBool("variopro")

		ports, err := serport.ListPorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		if onlyVarioPro {
			for _, port := range ports {
				info, err := serport.GetPortInfo(port)
				if err == nil && info.IsVarioPro() {
					fmt.Println(port)
				}
			}
			return
		}

		if len(ports) == 0 {
			fmt.Println("No serial ports found")
			return
		}

		headerStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))
		markStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("40"))

		fmt.Println(headerStyle.Render(fmt.Sprintf("%-15s %-10s %-30s %s", "Port", "USB ID", "Description", "")))
		for _, port := range ports {
			info, err := serport.GetPortInfo(port)
			if err != nil {
				fmt.Printf("%-15s %-10s %-30s\n", port, "", fmt.Sprintf("Error: %v", err))
				continue
			}
			usbID := ""
			if info.VendorID != "" {
				usbID = info.VendorID + ":" + info.ProductID
			}
			mark := ""
			if info.IsVarioPro() {
				mark = markStyle.Render("VarioPro")
			}
			fmt.Printf("%-15s %-10s %-30s %s\n", info.Name, usbID, info.Description, mark)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("variopro", false, "Only print ports identified as VarioPro displays")
}
