// Command paperqa answers questions about a folder of PDF papers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/paperqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/config/env"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/paperqa/internal/core/services"
	"github.com/custodia-labs/paperqa/internal/normalisers"
	"github.com/custodia-labs/paperqa/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		cli.PrintError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	environment, err := env.New(env.DefaultDotEnv)
	if err != nil {
		return fmt.Errorf("loading %s: %w", env.DefaultDotEnv, err)
	}

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	prompts, err := file.NewPromptStore("")
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	settings := services.NewSettingsService(configStore, environment, ai.NewConfigValidator())
	builder := services.NewPipelineBuilder(
		ai.NewFactory(),
		normalisers.DefaultRegistry(),
		postprocessors.DefaultRegistry(),
		memory.NewVectorIndexBuilder(),
		prompts,
	)

	cli.SetVersion(version)
	cli.SetSettingsService(settings)
	cli.SetPipelineBuilder(builder)

	return cli.Execute(ctx)
}
