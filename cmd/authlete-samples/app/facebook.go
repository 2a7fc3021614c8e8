package app

import (
	"fmt"

	"github.com/spf13/cobra"

	samples "github.com/authlete/authlete-go-samples"
	"github.com/authlete/authlete-go-samples/providers/facebook"
	"github.com/authlete/authlete-go-samples/security"
)

// newFacebookLoginCmd obtains a Facebook access token for trying the
// callback's social claims by hand.
func newFacebookLoginCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "facebook-login",
		Short: "Obtain a Facebook access token for testing social claims",
		Long: `Without --code, print the Facebook authorization URL to open in a browser.
With --code, exchange the authorization code returned to FACEBOOK_REDIRECT_URL
for an access token and print it. Requires FACEBOOK_CLIENT_ID and
FACEBOOK_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := samples.LoadConfig()
			if err != nil {
				return err
			}
			fb, err := facebook.NewProvider(facebookConfig(cfg))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if code == "" {
				authURL, err := fb.AuthorizationURL(security.GenerateRequestID())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, authURL)
				return err
			}

			token, err := fb.ExchangeCode(cmd.Context(), code)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, token.AccessToken)
			return err
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Authorization code to exchange")
	return cmd
}
