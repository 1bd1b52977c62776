package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/indigo-web/hclient/client"
	"github.com/indigo-web/hclient/config"
	"github.com/indigo-web/hclient/http"
	"github.com/indigo-web/hclient/http/method"
	"github.com/indigo-web/hclient/http/status"
	"github.com/indigo-web/hclient/kv"
	"github.com/indigo-web/hclient/sink"
	"github.com/indigo-web/hclient/transport"
	"github.com/spf13/cobra"
)

type requestOptions struct {
	method  string
	headers []string
	data    string
	port    uint16
	config  string
	noColor bool
	verbose bool
	// dialer overrides the TCP dialer. Used in tests only.
	dialer transport.Dialer
}

func runRequest(cmd *cobra.Command, opts *requestOptions, args []string) error {
	if opts.noColor {
		color.NoColor = true
	}

	cfg := config.Default()
	if opts.config != "" {
		loaded, err := config.Load(opts.config)
		if err != nil {
			return configError{err: err}
		}

		cfg = loaded
	}

	headers, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	host, path := args[0], "/"
	if len(args) > 1 {
		path = args[1]
	}

	m := opts.method
	var body []byte
	if cmd.Flags().Changed("data") {
		body = []byte(opts.data)
		if !cmd.Flags().Changed("request") {
			m = method.POST
		}
	}

	level := cfg.SlogLevel()
	if opts.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	writer := sink.NewWriter[*slog.Logger](out)
	writer.Headers = func(resp *http.Response) {
		printHead(errOut, resp, opts.verbose)
	}

	conn := client.New[*slog.Logger](host, opts.port).
		Tune(cfg).
		Logger(logger).
		Observe(writer, logger)
	if opts.dialer != nil {
		conn.WithDialer(opts.dialer)
	}
	defer conn.CleanUp()

	if err = conn.SendRequest(m, path, headers, body); err != nil {
		return err
	}

	for conn.ResponsesPending() {
		if err = conn.ProcessStep(); err != nil {
			return err
		}
	}

	if writer.Err != nil {
		return fmt.Errorf("writing body: %w", writer.Err)
	}

	fmt.Fprintf(errOut, "\n%d bytes received\n", writer.Bytes)
	return nil
}

func printHead(w io.Writer, resp *http.Response, verbose bool) {
	paint := colorOf(resp.Code).SprintFunc()
	fmt.Fprintf(w, "%s %s\n", resp.Protocol, paint(fmt.Sprintf("%d %s", resp.Code, resp.Reason)))

	if !verbose {
		return
	}

	bold := color.New(color.Bold).SprintFunc()
	for name, value := range resp.Headers.Pairs() {
		fmt.Fprintf(w, "%s: %s\n", bold(name), value)
	}

	fmt.Fprintln(w)
}

func colorOf(code status.Code) *color.Color {
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold)
	case code >= 400:
		return color.New(color.FgRed)
	case code >= 300:
		return color.New(color.FgYellow)
	case code >= 200:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgCyan)
	}
}

// parseHeaders turns a list of "Name: value" strings into pairs, preserving the order.
func parseHeaders(raw []string) ([]kv.Pair, error) {
	pairs := make([]kv.Pair, 0, len(raw))
	for _, header := range raw {
		name, value, found := strings.Cut(header, ":")
		name = strings.TrimSpace(name)
		if !found || len(name) == 0 {
			return nil, fmt.Errorf("malformed header %q: expected the \"Name: value\" form", header)
		}

		pairs = append(pairs, kv.Pair{Key: name, Value: strings.TrimSpace(value)})
	}

	return pairs, nil
}
