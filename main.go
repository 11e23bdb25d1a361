package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/km-arc/go-services/framework/app"
	"github.com/km-arc/go-services/framework/config"
	gohttp "github.com/km-arc/go-services/framework/http"
	"github.com/km-arc/go-services/framework/providers"
	"github.com/km-arc/go-services/framework/service"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "services",
		Short: "Host services built from declared extensions",
	}
	root.AddCommand(newRunCommand())
	return root
}

// newRunCommand creates `services run`, which hosts the greeter service
// until interrupted.
func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the greeter service and block until SIGINT or SIGTERM",
		Example: `  # Listen on the address from .env (HTTP_ADDR)
  services run

  # Load a yaml file, expanding ${VAR:default} references
  services run --config services.yaml --env .env.local`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			path, _ := cmd.Flags().GetString("config")
			envFiles, _ := cmd.Flags().GetStringSlice("env")

			cfg, err := loadConfig(path, envFiles)
			if err != nil {
				return err
			}
			if cfg.HTTP.Addr == "" {
				cfg.HTTP.Addr = ":8080"
			}
			if _, ok := cfg.Value("greeting"); !ok {
				cfg.Values["greeting"] = "Hello"
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner := app.NewRunner(cfg)
			runner.Add(greeter())
			return runner.Run(ctx)
		},
	}
	cmd.Flags().String("config", "", "yaml configuration file")
	cmd.Flags().StringSlice("env", nil, "dotenv files to load before reading the environment")
	return cmd
}

func loadConfig(path string, envFiles []string) (*config.Config, error) {
	if path == "" {
		return config.Load(envFiles...), nil
	}
	return config.LoadFile(path, envFiles...)
}

// ── Example service ───────────────────────────────────────────────────────────

func greeter() *service.Definition {
	return service.New("greeter").
		Attach("greeting", providers.NewConfig("greeting")).
		Attach("limiter", providers.NewLimiter(5, 10)).
		Attach("metrics", providers.NewMetrics("greeter")).
		Handle("hello", hello, gohttp.Handle(http.MethodGet, "/hello/{name}")).
		Handle("greet", greet, gohttp.Handle(http.MethodPost, "/greetings")).
		Handle("health", health, gohttp.Handle(http.MethodGet, "/health"))
}

func hello(_ context.Context, call *service.Call) (any, error) {
	if lim, ok := service.Get[*rate.Limiter](call, "limiter"); ok && !lim.Allow() {
		return nil, gohttp.Errorf(http.StatusTooManyRequests, "slow down")
	}
	req, ok := gohttp.RequestOf(call.Arg(0))
	if !ok {
		return nil, gohttp.Errorf(http.StatusBadRequest, "not an http call")
	}

	return message(call, req.Param("name"), req.Query("punctuation", "!")), nil
}

// greet is hello for a JSON or form body: {"name": "ada"}.
func greet(_ context.Context, call *service.Call) (any, error) {
	req, ok := gohttp.RequestOf(call.Arg(0))
	if !ok {
		return nil, gohttp.Errorf(http.StatusBadRequest, "not an http call")
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := req.Bind(&body); err != nil {
		return nil, gohttp.Errorf(http.StatusUnprocessableEntity, "%v", err)
	}
	if body.Name == "" {
		return nil, gohttp.Errorf(http.StatusUnprocessableEntity, "name is required")
	}
	return message(call, body.Name, "!"), nil
}

func message(call *service.Call, name, punctuation string) map[string]string {
	greeting, _ := service.Get[string](call, "greeting")
	return map[string]string{"message": greeting + ", " + name + punctuation}
}

func health(context.Context, *service.Call) (any, error) {
	return nil, nil
}
