// Package cli implements reviewctl, the terminal front end of the review API.
package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"resume-review/internal/client"
)

const (
	app              = "reviewctl"
	envPrefix        = "REVIEW"
	defaultServer    = "http://localhost:8080"
	defaultClientID  = "reviewctl"
	flagServer       = "server"
	flagClientID     = "client-id"
	flagDebug        = "debug"
	flagJSON         = "json"
	flagInteractive  = "interactive"
	configSearchPath = "."
)

// selectFunc asks the user to pick one of labels and returns its index.
type selectFunc func(label string, items []string) (int, error)

// Options carries the dependencies a command tree runs with.
type Options struct {
	Out        io.Writer
	Err        io.Writer
	HTTPClient *http.Client
	Select     selectFunc
}

type runtime struct {
	opts    Options
	v       *viper.Viper
	cfgFile string
	logger  *zap.Logger
}

// Execute runs reviewctl with process defaults.
func Execute() error {
	return NewRootCommand(Options{}).Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Select == nil {
		opts.Select = promptSelect
	}
	rt := &runtime{opts: opts, v: viper.New()}

	root := &cobra.Command{
		Use:           app,
		Short:         "reviewctl uploads resumes for analysis and browses past results",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init()
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	flags := root.PersistentFlags()
	flags.StringVar(&rt.cfgFile, "config", "", "a config file (default is reviewctl.yaml in current directory)")
	flags.String(flagServer, defaultServer, "review API base URL")
	flags.String(flagClientID, defaultClientID, "client identifier sent as X-Client-Id")
	flags.BoolP(flagDebug, "d", false, "verbose/debug output")
	flags.BoolP(flagJSON, "j", false, "json format for logging")
	for _, name := range []string{flagServer, flagClientID, flagDebug, flagJSON} {
		_ = rt.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(rt.uploadCommand(), rt.historyCommand(), rt.showCommand())

	return root
}

func (rt *runtime) init() error {
	rt.v.SetEnvPrefix(envPrefix)
	rt.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	rt.v.AutomaticEnv()

	if rt.cfgFile != "" {
		rt.v.SetConfigFile(rt.cfgFile)
	} else {
		rt.v.AddConfigPath(configSearchPath)
		rt.v.SetConfigName(app)
		rt.v.SetConfigType("yaml")
	}
	if err := rt.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if rt.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	rt.logger = newLogger(rt.opts.Err, rt.v.GetBool(flagJSON), rt.v.GetBool(flagDebug))
	rt.logger.Debug("config loaded",
		zap.String("server", rt.v.GetString(flagServer)),
		zap.String("client_id", rt.v.GetString(flagClientID)),
		zap.String("config_file", rt.v.ConfigFileUsed()),
	)
	return nil
}

func (rt *runtime) client() *client.Client {
	return client.New(rt.v.GetString(flagServer), rt.v.GetString(flagClientID), rt.opts.HTTPClient, rt.logger)
}
