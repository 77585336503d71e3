// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"

	"github.com/pdiddy/booknotes/pkg/types"
)

// Chat is the conversation with one bot. It remembers the documents it has
// seen so Download does not need to fetch the message again.
type Chat struct {
	api    *tg.Client
	sender *message.Sender
	peer   tg.InputPeerClass
	docs   map[int]*tg.Document
}

func newChat(api *tg.Client, sender *message.Sender, peer tg.InputPeerClass) *Chat {
	return &Chat{api: api, sender: sender, peer: peer, docs: map[int]*tg.Document{}}
}

// SendText sends text to the bot and returns the sent message ID.
func (c *Chat) SendText(ctx context.Context, text string) (int, error) {
	upd, err := c.sender.To(c.peer).Text(ctx, text)
	if err != nil {
		return 0, err
	}
	return sentMessageID(upd)
}

// Recent returns up to limit of the latest messages, newest first.
func (c *Chat) Recent(ctx context.Context, limit int) ([]types.BotMessage, error) {
	res, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  c.peer,
		Limit: limit,
	})
	if err != nil {
		return nil, err
	}
	return c.collect(historyMessages(res)), nil
}

// Download streams the document attached to message msgID into w.
func (c *Chat) Download(ctx context.Context, msgID int, w io.Writer) error {
	doc, ok := c.docs[msgID]
	if !ok {
		res, err := c.api.MessagesGetMessages(ctx, []tg.InputMessageClass{&tg.InputMessageID{ID: msgID}})
		if err != nil {
			return fmt.Errorf("fetching message %d: %w", msgID, err)
		}
		c.collect(historyMessages(res))
		if doc, ok = c.docs[msgID]; !ok {
			return fmt.Errorf("message %d has no document", msgID)
		}
	}

	_, err := downloader.NewDownloader().
		Download(c.api, doc.AsInputDocumentFileLocation()).
		Stream(ctx, w)
	return err
}

func (c *Chat) collect(msgs []tg.MessageClass) []types.BotMessage {
	out := make([]types.BotMessage, 0, len(msgs))
	for _, m := range msgs {
		bm, doc, ok := convertMessage(m)
		if !ok {
			continue
		}
		if doc != nil {
			c.docs[bm.ID] = doc
		}
		out = append(out, bm)
	}
	return out
}

var errNoMessageID = errors.New("no message id in send result")

// sentMessageID extracts the ID of the message just sent from the updates
// the server returned for it.
func sentMessageID(upd tg.UpdatesClass) (int, error) {
	var list []tg.UpdateClass
	switch u := upd.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID, nil
	case *tg.Updates:
		list = u.Updates
	case *tg.UpdatesCombined:
		list = u.Updates
	default:
		return 0, fmt.Errorf("%w: unexpected %T", errNoMessageID, upd)
	}

	for _, item := range list {
		switch v := item.(type) {
		case *tg.UpdateMessageID:
			return v.ID, nil
		case *tg.UpdateNewMessage:
			return v.Message.GetID(), nil
		}
	}
	return 0, errNoMessageID
}

// historyMessages unwraps the message list of a history response.
func historyMessages(res tg.MessagesMessagesClass) []tg.MessageClass {
	switch r := res.(type) {
	case *tg.MessagesMessages:
		return r.Messages
	case *tg.MessagesMessagesSlice:
		return r.Messages
	case *tg.MessagesChannelMessages:
		return r.Messages
	}
	return nil
}

// convertMessage maps a regular message to a BotMessage. Service and empty
// messages are reported as not ok. The document, if any, is returned for
// later download.
func convertMessage(m tg.MessageClass) (types.BotMessage, *tg.Document, bool) {
	msg, ok := m.(*tg.Message)
	if !ok {
		return types.BotMessage{}, nil, false
	}
	bm := types.BotMessage{ID: msg.ID, Outgoing: msg.Out, Text: msg.Message}

	media, ok := msg.Media.(*tg.MessageMediaDocument)
	if !ok || media.Document == nil {
		return bm, nil, true
	}
	doc, ok := media.Document.AsNotEmpty()
	if !ok {
		return bm, nil, true
	}
	bm.Document = &types.Document{FileName: documentFileName(doc), Size: doc.Size}
	return bm, doc, true
}

func documentFileName(doc *tg.Document) string {
	for _, attr := range doc.Attributes {
		if f, ok := attr.(*tg.DocumentAttributeFilename); ok {
			return f.FileName
		}
	}
	return ""
}
