package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/x-research-team/unirt/rt/handle"
	"github.com/x-research-team/unirt/rt/loader"
	"github.com/x-research-team/unirt/rt/property"
	"github.com/x-research-team/unirt/rt/query"
)

var deviceIndex int

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print every platform and device property",
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
			devices := l.Devices(p)
			if deviceIndex >= 0 && (deviceIndex < index || deviceIndex >= index+len(devices)) {
				index += len(devices)
				continue
			}
			fmt.Fprintf(out, "Platform [%s]\n", p.Object().Backend)
			if err := dumpProperties(ctx, out, d, query.Request{Kind: property.KindPlatform, Object: p}); err != nil {
				return err
			}
			for _, dev := range devices {
				if deviceIndex < 0 || deviceIndex == index {
					fmt.Fprintf(out, "Device #%d\n", index)
					if err := dumpProperties(ctx, out, d, query.Request{Kind: property.KindDevice, Object: dev}); err != nil {
						return err
					}
				}
				index++
			}
		}
		if deviceIndex >= index {
			return fmt.Errorf("device #%d not found (%d devices)", deviceIndex, index)
		}
		return nil
	},
}

// selectDevice возвращает устройство по сквозному индексу.
func selectDevice(l *loader.Loader, i int) (*handle.Device, error) {
	devices := l.AllDevices()
	if i < 0 || i >= len(devices) {
		return nil, fmt.Errorf("device #%d not found (%d devices)", i, len(devices))
	}
	return devices[i], nil
}

func init() {
	infoCmd.Flags().IntVar(&deviceIndex, "device", -1, "Only print the device with this index")
	rootCmd.AddCommand(infoCmd)
}
