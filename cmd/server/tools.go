package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/iliyamo/wedding-guests/internal/client"
	"github.com/iliyamo/wedding-guests/internal/config"
	"github.com/iliyamo/wedding-guests/internal/database"
	"github.com/iliyamo/wedding-guests/internal/gallery"
	"github.com/iliyamo/wedding-guests/internal/logger"
	"github.com/iliyamo/wedding-guests/internal/model"
	"github.com/iliyamo/wedding-guests/internal/queue"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the guests table if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db, cfg.DBDriver); err != nil {
				return err
			}
			logger.L().Infow("schema ready", "driver", cfg.DBDriver)
			return nil
		},
	}
}

func consumeCmd() *cobra.Command {
	var logPath string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Consume guest change events: purge cached lists and keep a change log",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rdb := openRedis(ctx)
			if rdb != nil {
				defer rdb.Close()
			}
			h := &queue.Handler{Purge: cachePurger{rdb: rdb, prefix: config.LoadCacheConfig().Prefix}.purge, LogPath: logPath}

			err := queue.StartGuestConsumer(ctx, config.BrokerURL(), h)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&logPath, "log", queue.DefaultLogPath, "change log file")
	return cmd
}

func apiFlags(cmd *cobra.Command, api *string, timeout *time.Duration) {
	def := os.Getenv("GUESTS_API_URL")
	if def == "" {
		def = "http://localhost:8080"
	}
	cmd.Flags().StringVar(api, "api", def, "base URL of the guest API")
	cmd.Flags().DurationVar(timeout, "timeout", 60*time.Second, "HTTP timeout")
}

func uploadCmd() *cobra.Command {
	var (
		api     string
		timeout time.Duration
		secret  string
		sub     client.Submission
		files   = map[model.Slot]*string{}
	)
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Create or update a guest and upload media, like the admin page",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, slot := range model.Slots {
				path := *files[slot]
				if path == "" {
					continue
				}
				f, err := readFile(slot, path)
				if err != nil {
					return err
				}
				sub.Files = append(sub.Files, f)
			}

			c := client.New(api, client.Options{Timeout: timeout, AdminSecret: secret})
			res, err := c.Submit(cmd.Context(), sub)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.StatusText())
			if !res.OK {
				return fmt.Errorf("upload rejected with status %d", res.Status)
			}
			return nil
		},
	}
	apiFlags(cmd, &api, &timeout)
	fl := cmd.Flags()
	fl.StringVar(&secret, "secret", os.Getenv("ADMIN_SECRET"), "admin secret sent as x-admin-secret")
	fl.Uint64Var(&sub.ID, "id", 0, "guest id to update; omit to create")
	fl.IntVar(&sub.Number, "number", 0, "display number")
	fl.StringVar(&sub.Name, "name", "", "guest name")
	fl.StringVar(&sub.RelationCS, "relation-cs", "", "relation in Czech")
	fl.StringVar(&sub.RelationEN, "relation-en", "", "relation in English")
	fl.StringVar(&sub.AboutCS, "about-cs", "", "short biography in Czech")
	fl.StringVar(&sub.AboutEN, "about-en", "", "short biography in English")
	for _, slot := range model.Slots {
		files[slot] = fl.String(flagName(slot), "", fmt.Sprintf("file for %s", slot))
	}
	return cmd
}

// flagName turns audio_official_cs into official-cs.
func flagName(s model.Slot) string {
	switch s {
	case model.SlotOfficialCS:
		return "official-cs"
	case model.SlotOfficialEN:
		return "official-en"
	case model.SlotFunnyCS:
		return "funny-cs"
	case model.SlotFunnyEN:
		return "funny-en"
	}
	return "photo"
}

func readFile(slot model.Slot, path string) (client.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return client.File{}, fmt.Errorf("read %s: %w", slot, err)
	}
	return client.File{
		Slot:        slot,
		Filename:    filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}

func guestsCmd() *cobra.Command {
	var (
		api     string
		timeout time.Duration
		lang    string
	)
	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Print the guest gallery in one language",
		RunE: func(cmd *cobra.Command, args []string) error {
			l := model.Lang(lang)
			if !l.Valid() {
				return fmt.Errorf("unknown language %q, use cs or en", lang)
			}
			m := gallery.New(l)
			c := client.New(api, client.Options{Timeout: timeout})
			var ne *gallery.NetworkError
			if err := m.Load(cmd.Context(), c); err != nil && !errors.As(err, &ne) {
				return err
			}
			return m.WriteText(cmd.OutOrStdout())
		},
	}
	apiFlags(cmd, &api, &timeout)
	cmd.Flags().StringVar(&lang, "lang", string(model.LangCS), "language: cs or en")
	return cmd
}
