/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-variopro/internal/serport"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "variopro",
	Short: "BAUM VarioPro braille display driver tools",
	Long: `Driver tooling for BAUM VarioPro modular braille displays.

The VarioPro is a chain of hot-pluggable modules behind one serial link:
a main display (80 or 64 cells) plus optional TASO, status and telephone
units. These commands speak the VarioPro wire protocol directly:

  list      find serial ports (and which ones are VarioPro displays)
  modules   run the detection handshake and show the attached modules
  monitor   watch decoded key events live in a TUI
  display   push braille cell patterns to the display
  send      write a raw protocol frame (debugging)`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.variopro.yaml)")
	rootCmd.PersistentFlags().IntP("baud", "b", 19200, "Baud rate (VarioPro hardware runs 19200)")
	viper.BindPFlag("baud", rootCmd.PersistentFlags().Lookup("baud"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".variopro")
	}

	viper.SetEnvPrefix("VARIOPRO")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// resolvePort picks the port from the command line, the config, or USB
// auto-detection, in that order.
func resolvePort(args []string) (string, error) {
	if len(args) > 0 {
		return args[len(args)-1], nil
	}
	if port := viper.GetString("port"); port != "" {
		return port, nil
	}
	ports, err := serport.ListVarioProPorts()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "", fmt.Errorf("no VarioPro display detected; pass a port explicitly")
	}
	return ports[0], nil
}
