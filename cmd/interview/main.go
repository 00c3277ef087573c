package main

import (
	"context"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/viva/internal/pkg/api"
	"github.com/airenas/viva/internal/pkg/capture"
	"github.com/airenas/viva/internal/pkg/gateway"
	"github.com/airenas/viva/internal/pkg/scoring"
	"github.com/airenas/viva/internal/pkg/session"
	"github.com/airenas/viva/internal/pkg/status"
	"github.com/airenas/viva/internal/pkg/upload"
	"github.com/labstack/gommon/color"
	"github.com/spf13/viper"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	ctx := context.Background()

	device, err := capture.NewFileDevice(cfg.Sub("input"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init capture device")
	}

	gwClient, err := gateway.NewClient(cfg.GetString("gateway.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init gateway client")
	}

	coordinator, err := upload.NewCoordinator(upload.Params{Filer: gwClient,
		OnProgress: func(percent int) {
			goapp.Log.Info().Int("percent", percent).Msg("upload progress")
		}})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init upload coordinator")
	}

	controller, err := capture.NewController(capture.Params{Device: device, Uploader: coordinator})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init capture controller")
	}
	defer func() {
		if err := controller.Close(); err != nil {
			goapp.Log.Error().Err(err).Msg("can't release device")
		}
	}()

	scoringClient, err := scoring.NewClient(cfg.GetString("scoring.url"))
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init scoring client")
	}

	machine, err := session.NewMachine(session.Params{Scoring: scoringClient,
		OnNextQuestion: controller.Reset})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init session machine")
	}

	if err := run(ctx, cfg.GetDuration("record.duration"), takeRole(cfg), controller, machine); err != nil {
		goapp.Log.Fatal().Err(err).Msg("interview failed")
	}
	machine.WaitSummary()
	goapp.Log.Info().Str("ID", machine.ID()).Msg("Interview done. Bye")
}

func takeRole(cfg *viper.Viper) api.Role {
	res := api.Role{Title: cfg.GetString("role.title"), Description: cfg.GetString("role.description")}
	if res.Title == "" {
		res = api.DefaultRoles()[0]
		goapp.Log.Info().Str("role", res.Title).Msg("no role configured, using default")
	}
	return res
}

func run(ctx context.Context, recDur time.Duration, role api.Role, controller *capture.Controller, machine *session.Machine) error {
	if recDur <= 0 {
		recDur = time.Second * 3
	}
	if err := controller.AcquireDevice(ctx); err != nil {
		return err
	}
	if err := machine.Start(ctx, role); err != nil {
		return err
	}
	goapp.Log.Info().Str("greeting", machine.Greeting()).Int("questions", machine.TotalQuestions()).Msg("started")

	for machine.Status() == status.InProgress {
		question, err := machine.CurrentQuestion()
		if err != nil {
			return err
		}
		goapp.Log.Info().Int("n", machine.CurrentIndex()+1).Str("question", question).Msg("answering")
		if err := controller.StartRecording(); err != nil {
			return err
		}
		time.Sleep(recDur)
		ref, err := controller.StopRecording(ctx)
		if err != nil {
			return err
		}
		if err := machine.SubmitCurrentAnswer(ctx, ref); err != nil {
			return err
		}
		goapp.Log.Info().Float64("progress", machine.Progress()).Msg("submitted")
	}
	return nil
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

      _       __                  _
     (_)___  / /____  ______   __(_)__ _      __
    / / __ \/ __/ _ \/ ___/ | / / / _ \ | /| / /
   / / / / / /_/  __/ /   | |/ / /  __/ |/ |/ /
  /_/_/ /_/\__/\___/_/    |___/_/\___/|__/|__/   v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/viva"))
}
