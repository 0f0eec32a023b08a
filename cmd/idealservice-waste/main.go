// Command idealservice-waste serves waste pickup calendars fetched from the
// IdealService API.
//
// @title                       IdealService Waste Pickup API
// @version                     1.0
// @description                 Waste collection calendars fetched from IdealService, with next-pickup sensors and iCalendar feeds.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the admin JWT.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

const serviceName = "idealservice-waste"

var logLevel string

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Waste pickup calendars from IdealService",
		Long: `idealservice-waste keeps the waste collection calendars of one or more
municipalities up to date and serves them over HTTP: status, cached pickup
events, a next-pickup sensor and an iCalendar feed per calendar.`,
		SilenceUsage: true,
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "", "log level (trace, debug, info, warn, error); overrides LOG_LEVEL")

	cmd.AddCommand(
		NewServeCommand(),
		NewCheckCommand(),
		NewTokenCommand(),
	)

	return cmd
}
