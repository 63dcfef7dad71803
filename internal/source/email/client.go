package email

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/rs/zerolog"

	"github.com/nhle/autoniq-extractor/internal/source"
)

// IMAPClient wraps go-imap v2 for connecting to and querying IMAP servers.
type IMAPClient struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	log      zerolog.Logger
}

// NewIMAPClient creates a new IMAP client configuration.
func NewIMAPClient(
	host, port, username, password string, tls bool, log zerolog.Logger,
) *IMAPClient {
	return &IMAPClient{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
		log:      log.With().Str("imap_host", host).Logger(),
	}
}

// Connect establishes a connection to the IMAP server, authenticates,
// and returns the connected client. The caller is responsible for
// calling Logout/Close on the returned client.
func (c *IMAPClient) Connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	c.log.Debug().Str("addr", addr).Bool("tls", c.tls).Msg("connecting to IMAP server")

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &source.AuthError{
			SourceType: source.SourceTypeIMAP,
			Message: fmt.Sprintf(
				"authentication failed for %s: %v",
				c.username, err,
			),
		}
	}

	c.log.Debug().Str("username", c.username).Msg("logged in to IMAP server")

	return client, nil
}

// FetchMessages connects to IMAP, selects mailbox, searches for messages
// received on or after since (and from the given sender, if any), and
// returns their parsed bodies in UID order. Bodies are fetched with
// BODY.PEEK so the \Seen flag is left alone.
func (c *IMAPClient) FetchMessages(
	ctx context.Context, mailbox string, since time.Time, from string,
) ([]ParsedMessage, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	// Unblock pending commands when the caller gives up.
	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	if _, err := client.Select(mailbox, nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", mailbox, err)
	}

	searchData, err := client.UIDSearch(searchCriteria(since, from), nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", mailbox, err)
	}

	uids := searchData.AllUIDs()
	c.log.Debug().
		Str("mailbox", mailbox).
		Time("since", since).
		Int("matches", len(uids)).
		Msg("searched mailbox")
	if len(uids) == 0 {
		return nil, nil
	}

	uidSet := imap.UIDSetNum(uids...)

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}

	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var messages []ParsedMessage
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			c.log.Warn().Err(err).Msg("skipping message that failed to download")
			continue
		}

		parsed := ParsedMessage{
			Envelope: envelopeFromBuffer(buf),
		}

		if rawBody := buf.FindBodySection(bodySection); rawBody != nil {
			parsed.TextBody, parsed.HTMLBody = parseMIMEBody(rawBody)
		}

		messages = append(messages, parsed)
	}

	if err := fetchCmd.Close(); err != nil {
		if ctx.Err() != nil {
			return messages, fmt.Errorf("fetching messages: %w", ctx.Err())
		}
		return messages, fmt.Errorf("fetching messages: %w", err)
	}

	return messages, nil
}

// SelectMailbox connects and selects mailbox, returning its message count.
func (c *IMAPClient) SelectMailbox(
	ctx context.Context, mailbox string,
) (uint32, error) {
	client, err := c.Connect(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = client.Logout().Wait() }()

	data, err := client.Select(mailbox, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("selecting %s: %w", mailbox, err)
	}

	return data.NumMessages, nil
}

// searchCriteria builds SINCE <date> [HEADER FROM <from>].
func searchCriteria(since time.Time, from string) *imap.SearchCriteria {
	criteria := &imap.SearchCriteria{
		Since: since,
	}
	if from != "" {
		criteria.Header = []imap.SearchCriteriaHeaderField{
			{Key: "From", Value: from},
		}
	}
	return criteria
}

// envelopeFromBuffer extracts an Envelope from a FetchMessageBuffer.
func envelopeFromBuffer(buf *imapclient.FetchMessageBuffer) Envelope {
	env := Envelope{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		env.MessageID = buf.Envelope.MessageID
		env.Subject = buf.Envelope.Subject
		env.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			env.From = buf.Envelope.From[0].Addr()
		}
	}

	return env
}
