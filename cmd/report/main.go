package main

import (
	"context"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/viva/internal/pkg/report"
	"github.com/airenas/viva/internal/pkg/scoring"
	"github.com/airenas/viva/internal/pkg/utils"
	"github.com/labstack/gommon/color"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	id := cfg.GetString("id")
	if id == "" {
		goapp.Log.Fatal().Msg("no interview id, set 'id' param")
	}

	scoringClient, err := scoring.NewClient(cfg.GetString("scoring.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init scoring client")
	}

	poller, err := report.NewPoller(report.Params{Fetcher: scoringClient,
		Interval: cfg.GetDuration("poll.interval")})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init poller")
	}

	ctx := context.Background()
	resCh, stopF, err := poller.Start(ctx, id)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start polling")
	}
	defer stopF()

	var rendered string
	for res := range resCh {
		rendered = report.Render(res)
		fmt.Print(rendered)
		if !res.Final() {
			goapp.Log.Info().Msg("AI processing not finished, waiting")
		}
	}

	outFile := cfg.GetString("out.file")
	if outFile != "" && rendered != "" {
		if err := utils.WriteFile(outFile, []byte(rendered)); err != nil {
			goapp.Log.Fatal().Err(err).Msg("can't save report")
		}
	}
	goapp.Log.Info().Str("ID", id).Msg("Done. Bye")
}

var (
	version = "DEV"
)

func printBanner() {
	banner := `
    _    ______    _____
   | |  / /  _/ |  / /   |
   | | / // / | | / / /| |
   | |/ // /  | |/ / ___ |
   |___/___/  |___/_/  |_|

                                     __
      ________  ____  ____  _____/ /_
     / ___/ _ \/ __ \/ __ \/ ___/ __/
    / /  /  __/ /_/ / /_/ / /  / /_
   /_/   \___/ .___/\____/_/   \__/   v: %s
            /_/

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/viva"))
}
