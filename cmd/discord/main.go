package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"voiceloom/internal/ai"
	"voiceloom/internal/bot"
	"voiceloom/internal/config"
	"voiceloom/internal/logging"
	"voiceloom/internal/seed"
	"voiceloom/internal/storage"
	"voiceloom/internal/version"
	"voiceloom/internal/voice"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)
	log.Info().Str("app", version.AppName).Str("version", version.Version).Msg("starting")

	if cfg.DiscordToken == "" {
		log.Fatal().Msg("DISCORD_TOKEN is not set")
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage")
	}
	defer store.Close()

	voices := store.LoadVoices()
	if len(voices) == 0 {
		voices, err = seedVoices(store, cfg.VoicesPath)
		if err != nil {
			log.Fatal().Err(err).Msg("seed voices")
		}
	}

	provider, err := ai.FromEngine(cfg.AIProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("provider")
	}

	sess := voice.NewSession(ai.NewRateLimited(provider, 12), store, voices)
	if history := store.LoadCouncilHistory(); len(history) > 0 {
		sess.SetCouncilHistory(history)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.New(cfg, sess, store).Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("bot error")
		}
		cancel()
	}

	log.Info().Msg("exited cleanly")
}

func seedVoices(store *storage.Storage, path string) ([]*voice.Voice, error) {
	defs, err := seed.Load(path)
	if err != nil {
		return nil, err
	}
	voices := make([]*voice.Voice, 0, len(defs))
	for _, def := range defs {
		v, err := seed.Birth(def)
		if err != nil {
			return nil, err
		}
		store.SaveVoice(v)
		voices = append(voices, v)
	}
	log.Info().Int("count", len(voices)).Msg("voices seeded")
	return voices, nil
}
