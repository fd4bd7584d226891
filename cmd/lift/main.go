package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/lift/app"
	"github.com/ayoisaiah/lift/internal/osutil"
	"github.com/ayoisaiah/lift/internal/pathutil"
	"github.com/ayoisaiah/lift/internal/static"
)

func run(args []string) error {
	// a .env file is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := pathutil.Initialize(); err != nil {
		return err
	}

	if err := static.Install(pathutil.DataDir()); err != nil {
		pterm.Warning.Printfln("unable to install starter plans: %v", err)
	}

	return app.Get().Run(args)
}

func main() {
	err := run(os.Args)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(osutil.ExitError)
	}
}
