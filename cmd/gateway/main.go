package main

import (
	"context"

	"github.com/airenas/async-api/pkg/miniofs"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/viva/internal/pkg/gateway"
	"github.com/airenas/viva/internal/pkg/utils"
	"github.com/labstack/gommon/color"
)

func main() {
	goapp.StartWithDefault()

	printBanner()

	cfg := goapp.Config
	data := &gateway.Data{}
	data.Port = cfg.GetInt("port")

	ctx := context.Background()

	filer, err := miniofs.NewFiler(ctx, miniofs.Options{Bucket: cfg.GetString("filer.bucket"),
		URL: cfg.GetString("filer.url"), User: cfg.GetString("filer.user"), Key: cfg.GetString("filer.key"),
		Secure: cfg.GetBool("filer.https")})
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't init filer")
	}
	data.Saver = filer
	data.Reader = filer

	go utils.RunPerfEndpoint()

	err = gateway.StartWebServer(data)
	if err != nil {
		goapp.Log.Fatal().Err(err).Msg("can't start web server")
	}
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
     ____ _____ _/ /____ _      ______ ___  __
    / __ ` + "`" + `/ __ ` + "`" + `/ __/ _ \ | /| / / __ ` + "`" + `/ / / /
   / /_/ / /_/ / /_/  __/ |/ |/ / /_/ / /_/ /
   \__, /\__,_/\__/\___/|__/|__/\__,_/\__, /   v: %s
  /____/                             /____/

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/airenas/viva"))
}
