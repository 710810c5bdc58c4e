package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/core/attendance"
	qrsvc "github.com/trezcool/mahudhurio/services/qr"
	"github.com/trezcool/mahudhurio/storage/sheets"
	googlesheets "github.com/trezcool/mahudhurio/storage/sheets/google"
)

var (
	writeFileFunc = os.WriteFile // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	source sheets.Source // lazily built from config when nil
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  checkconfig - validate the configuration and ping the submission source")
	fmt.Println("  mint [-minutes N] [-out FILE] - mint an attendance code and print the form URL")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	mintCmd := flag.NewFlagSet("mint", flag.ExitOnError)
	mintMinutes := mintCmd.Int("minutes", 0, "Validity window in minutes. Defaults to the configured validity.")
	mintOut := mintCmd.String("out", "", "Write the QR code PNG to this file.")

	switch args[1] {
	case "checkconfig":
		return cli.checkConfig()
	case "mint":
		if err := mintCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.mint(*mintMinutes, *mintOut)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) checkConfig() error {
	if err := cli.conf.ValidateServer(); err != nil {
		return err
	}
	fmt.Println("server config: ok")

	if err := cli.conf.ValidateForm(); err != nil {
		return err
	}
	fmt.Println("form config: ok")

	if err := cli.conf.ValidateSource(); err != nil {
		return err
	}
	ctx := context.Background()
	src := cli.source
	if src == nil {
		var err error
		if src, err = googlesheets.NewSource(ctx, cli.conf); err != nil {
			return err
		}
	}
	rows, err := src.FetchRows(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("submission source: ok, %d rows\n", len(rows))
	return nil
}

func (cli *commandLine) mint(minutes int, out string) error {
	data := attendance.MintRequest{ValidityMinutes: minutes}
	if err := data.Validate(cli.conf); err != nil {
		return err
	}

	tok, err := attendance.Mint(data.ValidityMinutes)
	if err != nil {
		return err
	}
	formURL := cli.conf.FormURL(tok.Code)

	fmt.Printf("code:    %s\n", tok.Code)
	fmt.Printf("expires: %s\n", tok.ExpiresAt.Format(time.RFC1123))
	fmt.Printf("form:    %s\n", formURL)

	if out != "" {
		png, err := qrsvc.PNG(formURL)
		if err != nil {
			return err
		}
		if err = writeFileFunc(out, png, 0o644); err != nil {
			return err
		}
		fmt.Printf("QR code written to %s\n", out)
	}
	return nil
}
