package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/echobot/engine"
	"github.com/opd-ai/echobot/persistence"
)

func newIDCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "id",
		Short: "Print the Tox ID of the stored profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			lock, err := persistence.Acquire(a.cfg.DataFile)
			if err != nil {
				return err
			}
			defer lock.Release()

			store, err := persistence.New(a.cfg.DataFile, []byte(a.cfg.Passphrase))
			if err != nil {
				return err
			}
			blob, err := store.Load()
			if errors.Is(err, persistence.ErrNotFound) {
				return fmt.Errorf("no profile at %s; run echobot once to create one", a.cfg.DataFile)
			}
			if err != nil {
				return err
			}

			sess, err := engine.NewSession(a.cfg.EngineOptions(), blob)
			if err != nil {
				return err
			}
			defer sess.Kill()

			_, err = fmt.Fprintln(cmd.OutOrStdout(), sess.Address())
			return err
		},
	}
}
