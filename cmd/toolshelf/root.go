package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/straye-as/toolshelf/internal/catalog"
	"github.com/straye-as/toolshelf/internal/client"
	"github.com/straye-as/toolshelf/internal/domain"
	"github.com/straye-as/toolshelf/internal/form"
	"github.com/straye-as/toolshelf/internal/logger"
	"github.com/straye-as/toolshelf/internal/terminal"
)

var errToolNotFound = errors.New("tool not found")

type cliOptions struct {
	v *viper.Viper
}

func (o *cliOptions) apiURL() string         { return o.v.GetString("api-url") }
func (o *cliOptions) timeout() time.Duration { return o.v.GetDuration("timeout") }
func (o *cliOptions) jsonOutput() bool       { return o.v.GetBool("json") }
func (o *cliOptions) verbose() bool          { return o.v.GetBool("verbose") }

// app wires the catalog controller to the API client and the terminal
type app struct {
	api     *client.Client
	console *terminal.Console
	form    *form.Form
	catalog *catalog.Controller
	logger  *zap.Logger
}

func newApp(opts *cliOptions) *app {
	log := logger.NewCLILogger(opts.verbose())
	api := client.New(opts.apiURL(), opts.timeout(), log)
	console := terminal.NewConsole()
	f := form.New(api, console, log)

	return &app{
		api:     api,
		console: console,
		form:    f,
		catalog: catalog.NewController(api, api, console, f, log),
		logger:  log,
	}
}

// lookup loads the catalog and returns the tool with the given id
func (a *app) lookup(ctx context.Context, arg string) (*domain.Tool, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return nil, fmt.Errorf("invalid tool id %q", arg)
	}
	a.catalog.Load(ctx)
	tool, ok := a.catalog.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errToolNotFound, id)
	}
	return &tool, nil
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{v: viper.New()}
	opts.v.SetEnvPrefix("TOOLSHELF")
	opts.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "toolshelf",
		Short:         "Browse and manage the toolshelf catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("api-url", "http://localhost:8080", "toolshelf API base URL")
	root.PersistentFlags().Duration("timeout", 30*time.Second, "timeout for each API request")
	root.PersistentFlags().Bool("json", false, "output JSON")
	root.PersistentFlags().BoolP("verbose", "v", false, "log API requests")
	_ = opts.v.BindPFlags(root.PersistentFlags())

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newDeleteCmd(opts),
		newOpenCmd(opts),
	)

	return root
}
