package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phildougherty/quick-assistant/internal/hotkey"
)

func NewKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List supported push-to-talk key names",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := hotkey.KeyNames()
			fmt.Println("Supported push-to-talk keys:")

			// Column layout so function keys and letters stay scannable
			const perRow = 8
			for i := 0; i < len(names); i += perRow {
				end := i + perRow
				if end > len(names) {
					end = len(names)
				}
				fmt.Println("  " + strings.Join(names[i:end], "  "))
			}
			fmt.Println("\nPass one with --ptt-key, e.g. --ptt-key f9")
			return nil
		},
	}
}
