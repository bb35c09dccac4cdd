// Package bot adapts Discord events to the voice core: DMs and mentions run
// directory exchanges, the council channel runs council turns, and every
// user message doubles as a story event feeding the classifier and the
// outreach check.
package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"voiceloom/internal/config"
	"voiceloom/internal/lifecycle"
	"voiceloom/internal/storage"
	"voiceloom/internal/voice"
)

type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	session *voice.Session
	store   *storage.Storage
}

func New(cfg *config.Config, sess *voice.Session, store *storage.Storage) *Bot {
	return &Bot{cfg: cfg, session: sess, store: store}
}

// Run opens the Discord session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer dg.Close()

	<-ctx.Done()
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().Str("user", r.User.Username).Int("voices", len(b.session.Voices())).
		Msg("bot ready")
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	content := strings.TrimSpace(m.Content)
	if content == "" {
		return
	}

	switch {
	case m.GuildID != "" && m.ChannelID == b.cfg.CouncilChannelID:
		b.handleCouncil(m, content)
	case m.GuildID == "" || b.mentioned(m):
		b.handleDirectory(m, strings.TrimSpace(b.stripMention(content)))
	}

	// Every user message is a story event. Runs after the exchange so the
	// classifier and outreach see its settled side effects.
	b.storyEventCheck(m, content)
}

func (b *Bot) handleCouncil(m *discordgo.MessageCreate, content string) {
	res, err := b.session.CouncilTurn(content)
	if err != nil {
		log.Error().Err(err).Msg("council turn failed")
		return
	}
	if res == nil {
		return // a turn is already in flight
	}
	for _, msg := range res.Messages {
		b.send(m.ChannelID, fmt.Sprintf("**%s:** %s", msg.Name, msg.Text))
	}
	b.refreshLifecycle()
}

func (b *Bot) handleDirectory(m *discordgo.MessageCreate, content string) {
	v, content := b.addressedVoice(content)
	if v == nil {
		return
	}
	res, err := b.session.DirectoryExchange(v.ID, content)
	if err != nil {
		log.Error().Err(err).Str("voice", v.Name).Msg("directory exchange failed")
		return
	}
	b.send(m.ChannelID, fmt.Sprintf("**%s:** %s", v.Name, res.Text))
	if lifecycle.Apply(v) {
		b.store.SaveVoice(v)
	}
}

// addressedVoice picks the voice a "Name: message" prefix names, falling
// back to the loudest living voice.
func (b *Bot) addressedVoice(content string) (*voice.Voice, string) {
	if name, rest, ok := strings.Cut(content, ":"); ok {
		if v := b.session.VoiceByName(name); v != nil && v.Alive() {
			return v, strings.TrimSpace(rest)
		}
	}
	var best *voice.Voice
	for _, v := range b.session.Voices() {
		if !v.Alive() {
			continue
		}
		if best == nil || v.Influence > best.Influence {
			best = v
		}
	}
	return best, content
}

// storyEventCheck classifies the message, applies resolution hints,
// reclassifies lifecycles, and runs the outreach selection. A fired outreach
// is delivered as a private message to the author.
func (b *Bot) storyEventCheck(m *discordgo.MessageCreate, content string) {
	class := b.session.ClassifyStoryEvent(content)
	b.session.ApplyEventProgress(class)
	b.refreshLifecycle()

	pick := b.session.CheckOutreach(class.Themes, class.Impact, class.Summary)
	if pick == nil {
		return
	}
	text := b.session.ComposeOutreachDM(pick.VoiceID)
	if text == "" {
		return
	}
	ch, err := b.dg.UserChannelCreate(m.Author.ID)
	if err != nil {
		log.Warn().Err(err).Str("voice", pick.Name).Msg("outreach DM channel failed")
		return
	}
	b.send(ch.ID, fmt.Sprintf("**%s:** %s", pick.Name, text))
	b.session.ClearPendingDM(pick.VoiceID)
}

func (b *Bot) refreshLifecycle() {
	for _, v := range b.session.Voices() {
		if lifecycle.Apply(v) {
			b.store.SaveVoice(v)
		}
	}
}

func (b *Bot) mentioned(m *discordgo.MessageCreate) bool {
	if b.dg == nil || b.dg.State == nil || b.dg.State.User == nil {
		return false
	}
	for _, u := range m.Mentions {
		if u.ID == b.dg.State.User.ID {
			return true
		}
	}
	return false
}

func (b *Bot) stripMention(content string) string {
	if b.dg == nil || b.dg.State == nil || b.dg.State.User == nil {
		return content
	}
	id := b.dg.State.User.ID
	content = strings.ReplaceAll(content, "<@"+id+">", "")
	return strings.ReplaceAll(content, "<@!"+id+">", "")
}

func (b *Bot) send(channelID, text string) {
	for len(text) > 2000 {
		cut := strings.LastIndex(text[:2000], "\n")
		if cut <= 0 {
			cut = 2000
		}
		if _, err := b.dg.ChannelMessageSend(channelID, strings.TrimSpace(text[:cut])); err != nil {
			log.Warn().Err(err).Msg("send failed")
			return
		}
		text = strings.TrimSpace(text[cut:])
	}
	if text == "" {
		return
	}
	if _, err := b.dg.ChannelMessageSend(channelID, text); err != nil {
		log.Warn().Err(err).Msg("send failed")
	}
}
