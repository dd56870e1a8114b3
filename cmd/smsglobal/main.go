package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	client "github.com/lubluniky/smsglobal-client-go"
	"github.com/lubluniky/smsglobal-client-go/config"
)

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

type rootOptions struct {
	envFile    string
	configFile string
	debug      bool
	strict     bool
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "smsglobal",
		Short:         "Send MAC-signed requests to the SMSGlobal REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        cmd.ErrOrStderr(),
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})
			if opts.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}

			if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading %s: %w", opts.envFile, err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with SMSGLOBAL_* variables (optional)")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML config file; overrides environment values")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug logging including HTTP dumps")
	rootCmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "Exit non-zero on non-2xx API responses")

	rootCmd.AddCommand(newGetCmd(opts))
	rootCmd.AddCommand(newFormCmd(opts, "post"))
	rootCmd.AddCommand(newFormCmd(opts, "put"))
	rootCmd.AddCommand(newFormCmd(opts, "patch"))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newSendCmd(opts))
	rootCmd.AddCommand(newBalanceCmd(opts))

	return rootCmd
}

// extraClientOptions are appended to every client the CLI builds.
var extraClientOptions []client.Option

func newClient(opts *rootOptions) (*client.Client, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.New()
	}
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Debug = true
	}
	return cfg.NewClient(extraClientOptions...)
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var query map[string]string

	cmd := &cobra.Command{
		Use:   "get <action>",
		Short: "Send a signed GET request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			res, err := c.Get(cmd.Context(), args[0], query)
			return render(cmd, opts, res, err)
		},
	}
	cmd.Flags().StringToStringVarP(&query, "query", "q", nil, "query parameters as key=value")
	return cmd
}

func newFormCmd(opts *rootOptions, verb string) *cobra.Command {
	var form map[string]string

	cmd := &cobra.Command{
		Use:   verb + " <action>",
		Short: fmt.Sprintf("Send a signed %s request with a form body", verb),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}

			var send func(context.Context, string, map[string]string) (*client.Result, error)
			switch verb {
			case "post":
				send = c.Post
			case "put":
				send = c.Put
			case "patch":
				send = c.Patch
			}
			res, err := send(cmd.Context(), args[0], form)
			return render(cmd, opts, res, err)
		},
	}
	cmd.Flags().StringToStringVarP(&form, "form", "f", nil, "form fields as key=value")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <action>",
		Short: "Send a signed DELETE request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			res, err := c.Delete(cmd.Context(), args[0])
			return render(cmd, opts, res, err)
		},
	}
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	var params client.SendSMSParams

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an SMS",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			log.Debug().Str("destination", params.Destination).Str("origin", params.Origin).Msg("sending sms")
			res, err := c.SendSMS(cmd.Context(), params)
			return render(cmd, opts, res, err)
		},
	}
	cmd.Flags().StringVar(&params.Origin, "origin", "", "sender ID")
	cmd.Flags().StringVar(&params.Destination, "to", "", "destination number (required)")
	cmd.Flags().StringVar(&params.Message, "message", "", "message text (required)")
	cmd.Flags().StringVar(&params.ScheduledDateTime, "at", "", "schedule, yyyy-MM-dd HH:mm:ss")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func newBalanceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the account credit balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(opts)
			if err != nil {
				return err
			}
			res, err := c.CreditBalance(cmd.Context())
			return render(cmd, opts, res, err)
		},
	}
}

// render prints the decoded payload, or the request dump when no response
// arrived. Transport failures always fail the command; API error statuses
// only with --strict.
func render(cmd *cobra.Command, opts *rootOptions, res *client.Result, err error) error {
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if !res.HasResponse() {
		fmt.Fprintln(out, res.RequestDump)
		return res.Err()
	}

	pretty, err := json.MarshalIndent(res.Payload, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting payload: %w", err)
	}
	fmt.Fprintln(out, string(pretty))

	log.Debug().Str("method", res.Method).Str("url", res.URL).Int("status_code", res.StatusCode).Msg("request completed")
	if opts.strict {
		return res.Err()
	}
	return nil
}
