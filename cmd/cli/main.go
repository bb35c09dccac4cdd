// A local REPL for driving the voice core without Discord: directory
// exchanges, council turns, and story events from stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"voiceloom/internal/ai"
	"voiceloom/internal/config"
	"voiceloom/internal/lifecycle"
	"voiceloom/internal/logging"
	"voiceloom/internal/seed"
	"voiceloom/internal/storage"
	"voiceloom/internal/voice"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("storage")
	}
	defer store.Close()

	voices := store.LoadVoices()
	if len(voices) == 0 {
		defs, err := seed.Load(cfg.VoicesPath)
		if err != nil {
			log.Fatal().Err(err).Msg("load voice definitions")
		}
		for _, def := range defs {
			v, err := seed.Birth(def)
			if err != nil {
				log.Fatal().Err(err).Msg("birth voice")
			}
			store.SaveVoice(v)
			voices = append(voices, v)
		}
	}

	provider, err := ai.FromEngine(cfg.AIProvider)
	if err != nil {
		log.Fatal().Err(err).Msg("provider")
	}
	sess := voice.NewSession(provider, store, voices)
	if history := store.LoadCouncilHistory(); len(history) > 0 {
		sess.SetCouncilHistory(history)
	}

	fmt.Println("voiceloom cli — /dm <name> <msg>, /council <msg>, /event <scene>, /voices, /quit")
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line == "/quit":
			return
		case line == "/voices":
			printVoices(sess)
		case strings.HasPrefix(line, "/dm "):
			runDM(sess, store, strings.TrimPrefix(line, "/dm "))
		case strings.HasPrefix(line, "/council "):
			runCouncil(sess, store, strings.TrimPrefix(line, "/council "))
		case strings.HasPrefix(line, "/event "):
			runEvent(sess, store, strings.TrimPrefix(line, "/event "))
		default:
			fmt.Println("unknown command")
		}
	}
}

func printVoices(sess *voice.Session) {
	for _, v := range sess.Voices() {
		line := fmt.Sprintf("%s [%s] influence=%d relationship=%s state=%s silent=%d",
			v.Name, v.Arcana, v.Influence, v.Relationship, v.State, v.SilentStreak)
		if v.Resolution != nil {
			line += fmt.Sprintf(" resolution=%s/%d", v.Resolution.Type, v.Resolution.Progress)
		}
		if v.PendingDM != nil {
			line += " [pending DM]"
		}
		fmt.Println(line)
	}
}

func runDM(sess *voice.Session, store *storage.Storage, arg string) {
	name, msg, ok := strings.Cut(arg, " ")
	if !ok {
		fmt.Println("usage: /dm <name> <msg>")
		return
	}
	v := sess.VoiceByName(name)
	if v == nil {
		fmt.Println("no such voice:", name)
		return
	}
	res, err := sess.DirectoryExchange(v.ID, msg)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("%s: %s\n", v.Name, res.Text)
	if lifecycle.Apply(v) {
		store.SaveVoice(v)
	}
}

func runCouncil(sess *voice.Session, store *storage.Storage, msg string) {
	res, err := sess.CouncilTurn(msg)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if res == nil {
		fmt.Println("(council busy)")
		return
	}
	for _, m := range res.Messages {
		fmt.Printf("%s: %s\n", m.Name, m.Text)
	}
	for _, v := range sess.Voices() {
		if lifecycle.Apply(v) {
			store.SaveVoice(v)
		}
	}
}

func runEvent(sess *voice.Session, store *storage.Storage, scene string) {
	class := sess.ClassifyStoryEvent(scene)
	fmt.Printf("impact=%s themes=%v summary=%q\n", class.Impact, class.Themes, class.Summary)
	sess.ApplyEventProgress(class)
	for _, v := range sess.Voices() {
		if lifecycle.Apply(v) {
			store.SaveVoice(v)
		}
	}
	if pick := sess.CheckOutreach(class.Themes, class.Impact, class.Summary); pick != nil {
		fmt.Printf("[%s reaches out] %s\n", pick.Name, sess.ComposeOutreachDM(pick.VoiceID))
		sess.ClearPendingDM(pick.VoiceID)
	}
}
