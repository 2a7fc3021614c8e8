// Package app provides the commands of the authlete-samples binary.
package app

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "authlete-samples",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "Sample servers for an Authlete-backed authorization service",
		Long: `authlete-samples runs the servers an Authlete service integrates with:

  authentication-server  the authentication callback endpoint (POST /authentication)
  resource-server        a resource server protected by token introspection (GET /me, GET /saying)

Configuration is read from the environment (AUTHLETE_HOST, SERVICE_API_KEY,
SERVICE_API_SECRET, AUTHENTICATION_API_KEY, ...).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newAuthenticationServerCmd())
	rootCmd.AddCommand(newResourceServerCmd())
	rootCmd.AddCommand(newFacebookLoginCmd())
	rootCmd.AddCommand(newHashSecretCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
