package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phildougherty/quick-assistant/internal/audio"
)

func NewDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()

			devices, err := audio.InputDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				fmt.Println("No input devices found")
				return nil
			}

			for _, device := range devices {
				marker := " "
				if device.Default {
					marker = "*"
				}
				fmt.Printf("%s %s (%d ch, %.0f Hz)\n", marker, device.Name, device.Channels, device.SampleRate)
			}
			fmt.Println("\n* marks the default device. Pass a name with --device.")
			return nil
		},
	}
}
