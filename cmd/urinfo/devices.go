package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/x-research-team/unirt/rt/property"
	"github.com/x-research-team/unirt/rt/query"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List platforms and devices of all configured backends",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := openLoader(cmd)
		if err != nil {
			return err
		}
		defer closeLoader(cmd.Context(), l)

		ctx := cmd.Context()
		d := l.Dispatcher()
		out := cmd.OutOrStdout()
		index := 0
		for _, p := range l.Platforms() {
			name := fetchString(ctx, d, query.Request{Kind: property.KindPlatform, Object: p, Property: property.PlatformName})
			fmt.Fprintf(out, "[%s] %s\n", p.Object().Backend, name)
			for _, dev := range l.Devices(p) {
				devName := fetchString(ctx, d, query.Request{Kind: property.KindDevice, Object: dev, Property: property.DeviceName})
				fmt.Fprintf(out, "  #%d %s (%s)\n", index, devName, dev.Object().ID)
				index++
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
