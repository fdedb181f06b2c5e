package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/eyescreen/eyescreen/apiclient"
	"github.com/eyescreen/eyescreen/config"
	"github.com/spf13/cobra"
)

// rootFlags are the persistent flags shared by every command.
type rootFlags struct {
	mode   string
	dbPath string
	origin string
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:   "eyescreen",
		Short: "eyescreen: host and command-line client for the eye screening backend",
		Long: `eyescreen serves the browser client and talks to the screening backend.

The backend address follows the mode (--mode, EYESCREEN_MODE or NODE_ENV):
"production" keeps requests relative to the page origin, anything else
targets the local development backend at http://localhost:5000.

  eyescreen resolve                          # show the resolved endpoint
  eyescreen serve                            # host the browser client
  eyescreen detect --left l.jpg --right r.jpg
  eyescreen batch --local ./patients --csv out.csv
  eyescreen chat 青光眼怎么治疗
  eyescreen history`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.mode, "mode", "m", "", "Runtime mode (default: $EYESCREEN_MODE, then $NODE_ENV)")
	root.PersistentFlags().StringVar(&f.dbPath, "db", "", "History database path (default: $EYESCREEN_DB or "+config.DefaultDBPath+")")
	root.PersistentFlags().StringVar(&f.origin, "origin", "", "Origin for relative endpoints (default: $EYESCREEN_ORIGIN)")

	root.AddCommand(
		newResolveCmd(&f),
		newServeCmd(&f),
		newDetectCmd(&f),
		newBatchCmd(&f),
		newChatCmd(&f),
		newDownloadCmd(&f),
		newHistoryCmd(&f),
	)
	return root
}

// settings resolves configuration once per command invocation.
func (f *rootFlags) settings() config.Settings {
	s := config.Load(f.mode)
	if f.dbPath != "" {
		s.DBPath = f.dbPath
	}
	if f.origin != "" {
		s.Origin = f.origin
	}
	return s
}

// withApp builds the Application, runs fn and closes it.
func (f *rootFlags) withApp(ctx context.Context, fn func(*Application) error) error {
	app, err := newApplication(ctx, f.settings())
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	if err := fn(app); err != nil {
		if errors.Is(err, apiclient.ErrNoOrigin) {
			return fmt.Errorf("%w (set --origin or EYESCREEN_ORIGIN)", err)
		}
		return err
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Printf("eyescreen: %v", err)
		os.Exit(1)
	}
}
