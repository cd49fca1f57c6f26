/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	variopro "github.com/allbin/go-variopro"
	"github.com/allbin/go-variopro/internal/serport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <hex-payload> [port]",
	Short: "Send a raw protocol frame",
	Long: `Frame a raw payload and write it to the port. Debugging tool.

The payload is escaped and framed with the VarioPro header (0x1B marker,
info type, length) exactly as the driver would send it; no handshake is
performed. The default info type is 0x51 (dynamic data block).

Example usage:
  variopro send "00 00 00 00 04" /dev/ttyUSB0 --info-type 50   # module query
  variopro send "80 41 00 01 00 00 04 FF FF FF FF" /dev/ttyUSB0`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		payload, err := parseHexBytes(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid payload: %v\n", err)
			os.Exit(1)
		}
		infoTypeArg, _ := cmd.Flags().GetString("info-type")
		infoType, err := parseHexBytes(infoTypeArg)
		if err != nil || len(infoType) != 1 {
			fmt.Fprintf(os.Stderr, "Invalid info type: %s\n", infoTypeArg)
			os.Exit(1)
		}

		portPath, err := resolvePort(args[1:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		port, err := serport.Open(portPath, serport.WithBaudRate(viper.GetInt("baud")))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		frame, err := variopro.EncodeFrame(infoType[0], payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if _, err := port.Write(frame); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		port.Drain()
		fmt.Printf("Sent %d bytes: % X\n", len(frame), frame)
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().String("info-type", "51", "Frame info type as a hex byte (50 detection, 51 dynamic data)")
}
