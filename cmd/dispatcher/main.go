package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/gesture_companion/internal/app"
	"github.com/relabs-tech/gesture_companion/internal/command"
	"github.com/relabs-tech/gesture_companion/internal/frame"
	"github.com/relabs-tech/gesture_companion/internal/serialport"
)

var (
	flagPort       string
	flagBaud       uint
	flagDryRun     bool
	flagLegacyText bool
	flagBroker     string
	flagClientID   string
	flagTopic      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dispatcher",
		Short: "Receive companion gestures over serial and press media keys",
		Long: `Dispatcher listens on the companion's serial link, decodes command
frames and drives the desktop media controls (play/pause, track skip,
volume). It reconnects automatically when the device is unplugged.

Use --dry-run to log commands without touching the media player, and
--legacy-text for devices that still speak the old newline protocol.`,
		RunE: runDispatcher,
	}

	rootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "serial port (default: auto-detect)")
	rootCmd.PersistentFlags().UintVar(&flagBaud, "baud", 115200, "serial baud rate")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "log commands instead of pressing media keys")
	rootCmd.Flags().BoolVar(&flagLegacyText, "legacy-text", false, "speak the old newline text protocol")
	rootCmd.Flags().StringVar(&flagBroker, "broker", "", "MQTT broker to mirror received commands to (optional)")
	rootCmd.Flags().StringVar(&flagClientID, "client-id", "companion-dispatcher", "MQTT client ID for the mirror")
	rootCmd.Flags().StringVar(&flagTopic, "topic", "companion/command", "MQTT topic for the mirror")

	rootCmd.AddCommand(portsCmd(), sendCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDispatcher(cmd *cobra.Command, args []string) error {
	return app.RunDispatcher(app.DispatcherOptions{
		Port:       flagPort,
		Baud:       flagBaud,
		DryRun:     flagDryRun,
		LegacyText: flagLegacyText,
		Broker:     flagBroker,
		ClientID:   flagClientID,
		Topic:      flagTopic,
	})
}

func portsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List candidate serial devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ports := serialport.Candidates()
			if len(ports) == 0 {
				fmt.Println("no candidate serial devices found")
				return nil
			}
			for _, p := range ports {
				fmt.Println(p)
			}
			return nil
		},
	}
}

func sendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "send <command>",
		Short: "Send a single command frame, for testing the link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := command.ParseCode(args[0])
			if err != nil {
				return err
			}

			port := flagPort
			if port == "" {
				port, err = serialport.Detect()
				if err != nil {
					return err
				}
			}

			conn, err := serialport.Open(port, flagBaud)
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := conn.Write(frame.Marshal(command.Command{Code: code, Seq: 1})); err != nil {
				return err
			}
			fmt.Printf("sent %s to %s\n", code, port)
			return nil
		},
	}
}
