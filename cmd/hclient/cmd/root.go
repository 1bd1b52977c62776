package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/indigo-web/hclient/errors"
	"github.com/spf13/cobra"
)

var version = "dev"

// Exit codes for hclient CLI
const (
	ExitSuccess = 0
	// ExitFailure is anything not classified below, including invalid usage
	ExitFailure       = 1
	ExitProtocolError = 2
	ExitConfigError   = 3
	ExitNetworkError  = 4
)

func newRootCmd(opts *requestOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "hclient [flags] <host> [path]",
		Short: "Send a single HTTP/1.1 request and stream the response",
		Long: `hclient connects to the host, sends one request and prints the response
body as it arrives, followed by the number of received bytes.

Examples:
  hclient localhost
  hclient -p 8080 localhost /index.html
  hclient -X HEAD example.com
  hclient -d '{"hello":"world"}' -H "Content-Type: application/json" localhost /api`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, opts, args)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.method, "request", "X", "GET", "Request method")
	flags.StringArrayVarP(&opts.headers, "header", "H", nil, `Request header in the "Name: value" form, may be repeated`)
	flags.StringVarP(&opts.data, "data", "d", "", "Request body, implies POST unless the method is set explicitly")
	flags.Uint16VarP(&opts.port, "port", "p", 80, "Port to connect to")
	flags.StringVar(&opts.config, "config", getEnvString("HCLIENT_CONFIG", ""), "Path to config file (env: HCLIENT_CONFIG)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Print response headers and debug logs")

	root.AddCommand(newVersionCmd())

	return root
}

func Execute(v string) {
	version = v
	root := newRootCmd(new(requestOptions))
	if err := root.Execute(); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintln(root.ErrOrStderr(), red("error:"), err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if _, ok := err.(configError); ok {
		return ExitConfigError
	}

	switch kind, _ := errors.KindOf(err); kind {
	case errors.Transport:
		return ExitNetworkError
	case errors.Protocol:
		return ExitProtocolError
	default:
		return ExitFailure
	}
}

// configError marks failures of loading the config file.
type configError struct {
	err error
}

func (c configError) Error() string {
	return c.err.Error()
}

func (c configError) Unwrap() error {
	return c.err
}

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
