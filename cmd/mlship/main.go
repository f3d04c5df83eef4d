package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/mlship/mlship/cmd/mlship/subcommands/common"
	subendpoint "github.com/mlship/mlship/cmd/mlship/subcommands/endpoint"
	subinit "github.com/mlship/mlship/cmd/mlship/subcommands/init"
	"github.com/mlship/mlship/cmd/mlship/subcommands/logger"
	submodel "github.com/mlship/mlship/cmd/mlship/subcommands/model"
	subpipeline "github.com/mlship/mlship/cmd/mlship/subcommands/pipeline"
	subproject "github.com/mlship/mlship/cmd/mlship/subcommands/project"
	subpromote "github.com/mlship/mlship/cmd/mlship/subcommands/promote"
	subversion "github.com/mlship/mlship/cmd/mlship/subcommands/version"
	"github.com/mlship/mlship/pkg/utils/try"
	"github.com/youta-t/flarc"
)

func main() {
	name := path.Base(os.Args[0])
	logger := logger.Default()
	logger.SetPrefix(fmt.Sprintf("[%s] ", name))

	ctx, cancel := signal.NotifyContext(
		context.Background(), os.Interrupt, os.Kill,
	)
	defer cancel()

	cf := try.To(common.Flags(".")).OrFatal(logger)
	init := try.To(subinit.New()).OrFatal(logger)
	project := try.To(subproject.New()).OrFatal(logger)
	model := try.To(submodel.New()).OrFatal(logger)
	pipeline := try.To(subpipeline.New()).OrFatal(logger)
	endpoint := try.To(subendpoint.New()).OrFatal(logger)
	promote := try.To(subpromote.New()).OrFatal(logger)
	version := try.To(subversion.New()).OrFatal(logger)

	mlship := try.To(
		flarc.NewCommandGroup(
			"Operate your MLOps deployment project from the command line",
			cf,
			flarc.WithSubcommand("init", init),
			flarc.WithSubcommand("project", project),
			flarc.WithSubcommand("model", model),
			flarc.WithSubcommand("pipeline", pipeline),
			flarc.WithSubcommand("endpoint", endpoint),
			flarc.WithSubcommand("promote", promote),
			flarc.WithSubcommand("version", version),
		),
	).OrFatal(logger)

	os.Exit(flarc.Run(ctx, mlship, flarc.WithHelp(true)))
}
