package main

import (
	"fmt"
	"os"

	"github.com/amoylab/rentmanager/pkg/version"

	"github.com/spf13/cobra"
)

var (
	configPath string
	tokenUser  string
	tokenEmail string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Full())
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	reconcileCmd = &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute every room's status from its active tenants once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd.Context(), cmd.OutOrStdout())
		},
	}

	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd.OutOrStdout())
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print room status events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Rental property management API server",
		Long:  `apiserver serves the property, room and tenant API and keeps room occupancy consistent with active tenants`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "conf", "c", "", "path to configuration file (default apiserver.yaml, or $CONFIG_PATH)")

	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id placed in the token")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email placed in the token")
	_ = tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(versionCmd, serveCmd, reconcileCmd, tokenCmd, watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
