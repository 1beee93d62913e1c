package config

import (
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/bitrise-notify/pkg/domain/interfaces"
	"github.com/m-mizutani/bitrise-notify/pkg/infra/bitrise"
)

// Bitrise holds Bitrise API configuration
type Bitrise struct {
	APIURL string
}

// Flags returns CLI flags for Bitrise API configuration
func (c *Bitrise) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bitrise-api-url",
			Usage:       "Bitrise API endpoint used to fetch the app avatar",
			Value:       bitrise.DefaultBaseURL,
			Destination: &c.APIURL,
			Sources:     cli.EnvVars("BITRISE_NOTIFY_API_URL"),
		},
	}
}

// NewClient creates a Bitrise API client authenticated with token
func (c *Bitrise) NewClient(token string) interfaces.AppRegistry {
	var opts []bitrise.Option
	if c.APIURL != "" {
		opts = append(opts, bitrise.WithBaseURL(c.APIURL))
	}
	return bitrise.NewClient(token, opts...)
}
