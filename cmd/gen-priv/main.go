package main

import (
	"fmt"
	"log"
	"os"

	"github.com/seitarof/gen-priv/internal/cli"
	"github.com/seitarof/gen-priv/internal/generator"
	"github.com/seitarof/gen-priv/internal/source"
)

var version = "dev"

func main() {
	cfg, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.ShowVersion {
		fmt.Println(version)
		return
	}

	logger := log.Default()
	repo, err := source.Open(cfg.RepoURL, cfg.RepoDir, !cfg.NoFetch, logger)
	if err != nil {
		log.Fatal(err)
	}

	d := generator.NewDiffer(cfg.DiffCommand, logger)
	w := generator.NewFileWriter()
	g := generator.New(d, w, generator.Options{
		ProjectName: cfg.ProjectName,
		Attribution: cfg.Attribution,
		Logger:      logger,
	})

	runner := cli.NewRunner(repo, g, logger)
	if err := runner.Run(cfg); err != nil {
		log.Fatal(err)
	}
}
