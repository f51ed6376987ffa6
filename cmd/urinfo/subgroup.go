package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/x-research-team/unirt/rt/property"
	"github.com/x-research-team/unirt/rt/query"
)

var (
	subgroupDevice int
	kernelName     string
)

var subgroupCmd = &cobra.Command{
	Use:   "subgroup",
	Short: "Print kernel and sub-group properties of a kernel on a device",
	RunE: func(cmd *cobra.Command, args []string) error {
		if kernelName == "" {
			return fmt.Errorf("--kernel is required")
		}

		l, err := openLoader(cmd)
		if err != nil {
			return err
		}
		defer closeLoader(cmd.Context(), l)

		ctx := cmd.Context()
		dev, err := selectDevice(l, subgroupDevice)
		if err != nil {
			return err
		}
		kernel, err := l.CreateKernel(ctx, dev, kernelName)
		if err != nil {
			return err
		}

		d := l.Dispatcher()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Kernel %s on device #%d\n", kernelName, subgroupDevice)
		if err := dumpProperties(ctx, out, d, query.Request{Kind: property.KindKernel, Object: kernel}); err != nil {
			return err
		}
		return dumpProperties(ctx, out, d, query.Request{Kind: property.KindKernelSubGroup, Object: kernel, Device: dev})
	},
}

func init() {
	subgroupCmd.Flags().IntVar(&subgroupDevice, "device", 0, "Device index")
	subgroupCmd.Flags().StringVar(&kernelName, "kernel", "", "Kernel function name")
	rootCmd.AddCommand(subgroupCmd)
}
