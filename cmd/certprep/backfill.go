package main

import (
	"github.com/certprep/backend/internal/config"
	"github.com/certprep/backend/internal/progress"
	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill-titles",
	Short: "Infer original titles for saved tests that lack them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer st.close()

		users, err := st.users(ctx)
		if err != nil {
			return err
		}

		total := 0
		for _, userID := range users {
			uctx := config.WithUserID(ctx, userID)
			n, err := progress.NewStore(st.backend, userID).BackfillTitles(uctx)
			if err != nil {
				// One user's bad data should not stop the rest.
				config.WithContext(uctx).WithError(err).Error("Backfill failed")
				continue
			}
			total += n
		}

		config.WithContext(ctx).
			WithField("users", len(users)).
			WithField("updated", total).
			Info("Backfill complete")
		return nil
	},
}
