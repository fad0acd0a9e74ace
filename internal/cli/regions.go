package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ajnaduvil/ThetaDataTerminalManager/internal/config"
)

var (
	regionsMDDS string
	regionsFPSS string
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show the terminal's server regions",
	Long:  "Display the MDDS and FPSS server regions the terminal connects to.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := MustConnect()
		defer client.Close()

		regions, err := client.RegionsGet()
		if err != nil {
			return fmt.Errorf("get regions: %w", err)
		}

		fmt.Printf("MDDS: %s\n", regions.MDDS)
		fmt.Printf("FPSS: %s\n", regions.FPSS)
		return nil
	},
}

var regionsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the terminal's server regions",
	Long: "Update the MDDS and/or FPSS server regions. Changes are written to the terminal's properties file and take effect on the next terminal start.\n\n" +
		"Allowed MDDS regions: " + strings.Join(config.MDDSRegions, ", ") + "\n" +
		"Allowed FPSS regions: " + strings.Join(config.FPSSRegions, ", "),
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if regionsMDDS == "" && regionsFPSS == "" {
			return fmt.Errorf("specify --mdds and/or --fpss")
		}

		client := MustConnect()
		defer client.Close()

		regions, err := client.RegionsSet(regionsMDDS, regionsFPSS)
		if err != nil {
			return fmt.Errorf("set regions: %w", err)
		}

		fmt.Printf("MDDS: %s\n", regions.MDDS)
		fmt.Printf("FPSS: %s\n", regions.FPSS)
		return nil
	},
}

func init() {
	regionsSetCmd.Flags().StringVar(&regionsMDDS, "mdds", "", "MDDS region")
	regionsSetCmd.Flags().StringVar(&regionsFPSS, "fpss", "", "FPSS region")
	regionsCmd.AddCommand(regionsSetCmd)
	rootCmd.AddCommand(regionsCmd)
}
