package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kuechlerm/arkstruct/catalog"
	"github.com/kuechlerm/arkstruct/config"
)

// errCallFailed signals a failed Result; the Result itself has already been printed.
var errCallFailed = errors.New("call failed")

type callFlags struct {
	configPath  string
	baseURL     string
	errorPolicy string
	validate    bool
	timeout     time.Duration
}

func newCallCmd(a *app) *cobra.Command {
	var f callFlags
	cmd := &cobra.Command{
		Use:   "call <operation> [json|-]",
		Short: "Call an operation and print its result",
		Long: `Call an operation by name or path and print the result as JSON.

The argument defaults to {}. Pass - to read it from stdin.

Example:

	arkstruct call eins '{"requiredString":"x","requiredInt":1,"requiredBool":true}' --base-url http://localhost:8080`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := operationPath(args[0])
			if err != nil {
				return err
			}
			payload, err := readPayload(cmd, args[1:])
			if err != nil {
				return err
			}

			cfg, err := f.config()
			if err != nil {
				return err
			}
			c, release, err := cfg.NewClient(a.log)
			if err != nil {
				return err
			}
			defer release()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if f.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, f.timeout)
				defer cancel()
			}

			res := c.Call(ctx, path, payload)
			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !res.OK() {
				return errCallFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "YAML client configuration")
	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Base address, overrides the configuration")
	cmd.Flags().StringVar(&f.errorPolicy, "error-policy", "", "Error policy: message or status")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "Validate the argument and the response against their shapes")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Give up after this long")
	return cmd
}

// config merges the configuration file, if any, with the flags.
func (f *callFlags) config() (*config.Config, error) {
	cfg := &config.Config{}
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.baseURL != "" {
		cfg.BaseURL = f.baseURL
	}
	if f.errorPolicy != "" {
		cfg.ErrorPolicy = f.errorPolicy
	}
	if f.validate {
		cfg.ValidateRequests, cfg.ValidateResponses = true, true
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// operationPath accepts an operation name, Go method name or path. Unknown paths are
// passed through so that servers outside the catalog can be reached.
func operationPath(key string) (string, error) {
	if op, ok := catalog.Lookup(key); ok {
		return op.Path, nil
	}
	if strings.HasPrefix(key, "/") {
		return key, nil
	}
	return "", fmt.Errorf("unknown operation %q", key)
}

func readPayload(cmd *cobra.Command, args []string) (json.RawMessage, error) {
	data := []byte("{}")
	if len(args) > 0 {
		data = []byte(args[0])
		if args[0] == "-" {
			var err error
			if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return nil, err
			}
		}
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("argument is not valid JSON")
	}
	return json.RawMessage(data), nil
}
