package main

import (
	"context"
	"io"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rushteam/eventrec/config"
	_ "github.com/rushteam/eventrec/config/builders"
	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/interaction"
	"github.com/rushteam/eventrec/logging"
	"github.com/rushteam/eventrec/store"
	"github.com/rushteam/eventrec/tables"
)

// app 持有一次命令执行期间共享的依赖。
type app struct {
	settings *config.Settings
	store    core.Store
	tables   *tables.Tables
	log      *interaction.StoreLog
	logger   zerolog.Logger
}

// newRootCmd 返回根命令和它持有的依赖；调用方在 Execute 之后调用 app.close。
func newRootCmd() (*cobra.Command, *app) {
	var (
		configPath string
		a          = &app{}
	)

	root := &cobra.Command{
		Use:           "eventrec",
		Short:         "Event recommendation and offline learning",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(configPath, cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: $EVENTREC_CONFIG or ./eventrec.yaml)")

	root.AddCommand(
		newLogCmd(a),
		newTrainCmd(a),
		newRecommendCmd(a),
		newWeightsCmd(a),
	)
	return root, a
}

func (a *app) open(configPath string, stderr io.Writer) error {
	s, err := config.LoadSettings(configPath)
	if err != nil {
		return err
	}
	a.settings = s

	logCfg := s.Log
	logCfg.Output = stderr
	logging.Init(logCfg)
	a.logger = logging.Logger()

	st, err := store.Open(s.StoreOptions())
	if err != nil {
		return err
	}
	a.store = st
	a.tables = tables.New(st,
		tables.WithPrefix(s.Tables.Prefix),
		tables.WithLogger(logging.WithComponent("tables")),
	)
	a.log = interaction.NewStoreLog(st,
		interaction.WithKey(s.Interactions.Key),
		interaction.WithLogger(logging.WithComponent("interaction")),
	)
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
